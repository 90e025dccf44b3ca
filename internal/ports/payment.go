package ports

import "context"

// PaymentConfirmer confirms a VIP unlock charge. The payment protocol is an
// opaque collaborator; the simulated adapter always confirms.
type PaymentConfirmer interface {
	Confirm(ctx context.Context) error
}
