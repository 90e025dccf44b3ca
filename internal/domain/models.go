package domain

import "time"

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Mode identifies a divination flow. It doubles as the history record type.
type Mode string

const (
	ModeAstrology Mode = "ASTROLOGY"
	ModeTarot     Mode = "TAROT"
	ModeDream     Mode = "DREAM"
	ModeHuangli   Mode = "HUANGLI"
)

// Gender of the querent.
type Gender string

const (
	Male    Gender = "MALE"
	Female  Gender = "FEMALE"
	Unknown Gender = "UNKNOWN"
)

// Card is a single tarot card in a deck.
type Card struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// DrawnCard is a card dealt into a spread or as a follow-up indicator card.
type DrawnCard struct {
	Card
	Upright bool `json:"isUpright"`
}

// Deck is a collection of tarot cards.
type Deck struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
}

// UserProfile is the persisted onboarding profile. All fields are optional;
// an all-empty profile is the "onboarding seen" sentinel.
type UserProfile struct {
	Constellation string `json:"constellation"`
	BirthDate     string `json:"birthDate"` // YYYY-MM-DD
	MBTI          string `json:"mbti"`
	City          string `json:"city"`
}

// HasIdentity reports whether the profile carries enough identity to
// personalize a VIP prompt at all.
func (p UserProfile) HasIdentity() bool {
	return p.Constellation != ""
}

// CompleteFor reports whether the profile satisfies the VIP completeness
// predicate of the given mode. Tarot and dream gate on birth date + MBTI,
// astrology and huangli on constellation + MBTI.
func (p UserProfile) CompleteFor(mode Mode) bool {
	switch mode {
	case ModeTarot, ModeDream:
		return p.BirthDate != "" && p.MBTI != ""
	default:
		return p.Constellation != "" && p.MBTI != ""
	}
}

// UserInfo is the astrology chart input.
type UserInfo struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"` // YYYY-MM-DD
	BirthTime string `json:"birthTime"` // HH:mm
	Gender    Gender `json:"gender"`
}

// StarType classifies a star placed in a palace.
type StarType string

const (
	StarMajor   StarType = "MAJOR"
	StarMinor   StarType = "MINOR"
	StarLucky   StarType = "LUCKY"
	StarUnlucky StarType = "UNLUCKY"
)

// Star is a single star assignment inside a palace.
type Star struct {
	Name  string   `json:"name"`
	Type  StarType `json:"type"`
	Level int      `json:"level"`
}

// Palace is one of the twelve chart slots.
type Palace struct {
	ID           int    `json:"id"`
	Zodiac       string `json:"zodiac"`
	Name         string `json:"name"`
	Stars        []Star `json:"stars"`
	IsMainPalace bool   `json:"isMainPalace"`
}

// VIPCrystal is the crystal recommendation of a VIP augmentation.
type VIPCrystal struct {
	Variety    string `json:"variety"`
	OutfitTips string `json:"outfitTips"`
}

// VIPHomeTreasure is the home item recommendation of a VIP augmentation.
type VIPHomeTreasure struct {
	Item      string `json:"item"`
	Benefit   string `json:"benefit"`
	Placement string `json:"placement"`
}

// VIPData is the paid augmentation attached to an analysis result.
type VIPData struct {
	Crystal      VIPCrystal      `json:"crystal"`
	HomeTreasure VIPHomeTreasure `json:"homeTreasure"`
	PitfallGuide string          `json:"pitfallGuide"`
}

func (v VIPData) complete() bool {
	return v.Crystal.Variety != "" && v.Crystal.OutfitTips != "" &&
		v.HomeTreasure.Item != "" && v.HomeTreasure.Benefit != "" &&
		v.HomeTreasure.Placement != "" && v.PitfallGuide != ""
}

// DestinyAnalysis is the structured chart reading.
type DestinyAnalysis struct {
	Summary      string   `json:"summary"`
	Personality  string   `json:"personality"`
	Career       string   `json:"career"`
	Wealth       string   `json:"wealth"`
	Relationship string   `json:"relationship"`
	Health       string   `json:"health"`
	Suggestions  []string `json:"suggestions"`
	VIPData      *VIPData `json:"vipData,omitempty"`
}

// Validate checks the result against the fixed output contract. A vip result
// must carry the full vipData sub-shape.
func (a DestinyAnalysis) Validate(vip bool) error {
	if a.Summary == "" || a.Personality == "" || a.Career == "" ||
		a.Wealth == "" || a.Relationship == "" || a.Health == "" ||
		len(a.Suggestions) == 0 {
		return ErrMalformedResponse
	}
	if vip && (a.VIPData == nil || !a.VIPData.complete()) {
		return ErrMalformedResponse
	}
	return nil
}

// PastPresentFuture is the three-card timeline of a tarot reading.
type PastPresentFuture struct {
	Past    string `json:"past"`
	Present string `json:"present"`
	Future  string `json:"future"`
}

// TarotAnalysis is the structured three-card reading.
type TarotAnalysis struct {
	Question          string            `json:"question,omitempty"`
	Interpretation    string            `json:"interpretation"`
	Advice            string            `json:"advice"`
	PastPresentFuture PastPresentFuture `json:"pastPresentFuture"`
	VIPData           *VIPData          `json:"vipData,omitempty"`
}

func (a TarotAnalysis) Validate(vip bool) error {
	if a.Interpretation == "" || a.Advice == "" ||
		a.PastPresentFuture.Past == "" || a.PastPresentFuture.Present == "" ||
		a.PastPresentFuture.Future == "" {
		return ErrMalformedResponse
	}
	if vip && (a.VIPData == nil || !a.VIPData.complete()) {
		return ErrMalformedResponse
	}
	return nil
}

// DreamStyle selects the interpretation school for a dream reading.
type DreamStyle string

const (
	StyleZhougong     DreamStyle = "ZHOUGONG"
	StyleFreud        DreamStyle = "FREUD"
	StyleJung         DreamStyle = "JUNG"
	StyleCognitive    DreamStyle = "COGNITIVE"
	StyleAnthropology DreamStyle = "ANTHROPOLOGY"
)

// ValidDreamStyle reports whether s is one of the supported schools.
func ValidDreamStyle(s DreamStyle) bool {
	switch s {
	case StyleZhougong, StyleFreud, StyleJung, StyleCognitive, StyleAnthropology:
		return true
	}
	return false
}

// CoreSymbol is one dream symbol with its reading.
type CoreSymbol struct {
	Symbol  string `json:"symbol"`
	Meaning string `json:"meaning"`
}

// DreamAnalysis is the structured dream reading.
type DreamAnalysis struct {
	DreamContent  string       `json:"dreamContent,omitempty"`
	Style         DreamStyle   `json:"style,omitempty"`
	CoreSymbols   []CoreSymbol `json:"coreSymbols"`
	MainAnalysis  string       `json:"mainAnalysis"`
	HiddenMeaning string       `json:"hiddenMeaning"`
	LifeAdvice    string       `json:"lifeAdvice"`
	VIPData       *VIPData     `json:"vipData,omitempty"`
}

func (a DreamAnalysis) Validate(vip bool) error {
	if len(a.CoreSymbols) == 0 || a.MainAnalysis == "" ||
		a.HiddenMeaning == "" || a.LifeAdvice == "" {
		return ErrMalformedResponse
	}
	if vip && (a.VIPData == nil || !a.VIPData.complete()) {
		return ErrMalformedResponse
	}
	return nil
}

// HuangliData is the structured almanac lookup for one date.
type HuangliData struct {
	Date           string   `json:"date,omitempty"`
	LunarDate      string   `json:"lunarDate"`
	Ganzhi         string   `json:"ganzhi"`
	Yi             []string `json:"yi"`
	Ji             []string `json:"ji"`
	Wuxing         string   `json:"wuxing"`
	Chong          string   `json:"chong"`
	LuckyDirection string   `json:"luckyDirection"`
	Summary        string   `json:"summary"`
	VIPData        *VIPData `json:"vipData,omitempty"`
}

func (d HuangliData) Validate(vip bool) error {
	if d.LunarDate == "" || d.Ganzhi == "" || len(d.Yi) == 0 || len(d.Ji) == 0 ||
		d.Wuxing == "" || d.Chong == "" || d.LuckyDirection == "" || d.Summary == "" {
		return ErrMalformedResponse
	}
	if vip && (d.VIPData == nil || !d.VIPData.complete()) {
		return ErrMalformedResponse
	}
	return nil
}

// FollowupExchange is one question/answer round attached to a completed
// reading. Exchanges are append-only.
type FollowupExchange struct {
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	ExtraCards []DrawnCard `json:"extraCards,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// HistoryRecord is one saved session. Exactly one of the analysis pointer
// fields is set, matching Type.
type HistoryRecord struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Type        Mode               `json:"type"`
	UserInfo    *UserInfo          `json:"userInfo,omitempty"`
	Chart       []Palace           `json:"chart,omitempty"`
	PickedCards []DrawnCard        `json:"pickedCards,omitempty"`
	Destiny     *DestinyAnalysis   `json:"destiny,omitempty"`
	Tarot       *TarotAnalysis     `json:"tarot,omitempty"`
	Dream       *DreamAnalysis     `json:"dream,omitempty"`
	Huangli     *HuangliData       `json:"huangli,omitempty"`
	Followups   []FollowupExchange `json:"followups,omitempty"`
}
