package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/randomtoy/faas-go/internal/app"
	"github.com/randomtoy/faas-go/internal/domain"
)

type Handler struct {
	sessions *app.Sessions
	profiles *app.ProfileService
	history  *app.HistoryService
	logger   *slog.Logger
}

func NewHandler(sessions *app.Sessions, profiles *app.ProfileService, history *app.HistoryService, logger *slog.Logger) *Handler {
	return &Handler{sessions: sessions, profiles: profiles, history: history, logger: logger}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)

	e.POST("/v1/tarot/sessions", h.CreateTarot)
	e.GET("/v1/tarot/sessions/:id", h.TarotState)
	e.POST("/v1/tarot/sessions/:id/question", h.TarotQuestion)
	e.POST("/v1/tarot/sessions/:id/reveal", h.TarotReveal)
	e.POST("/v1/tarot/sessions/:id/pick", h.TarotPick)
	e.POST("/v1/tarot/sessions/:id/interpret", h.TarotInterpret)
	e.POST("/v1/tarot/sessions/:id/vip", h.TarotVIP)
	e.POST("/v1/tarot/sessions/:id/profile", h.TarotProfile)
	e.POST("/v1/tarot/sessions/:id/followup", h.TarotFollowup)
	e.POST("/v1/tarot/sessions/:id/save", h.TarotSave)
	e.POST("/v1/tarot/sessions/:id/reset", h.TarotReset)

	e.POST("/v1/astrology/sessions", h.CreateAstrology)
	e.GET("/v1/astrology/sessions/:id", h.AstrologyState)
	e.POST("/v1/astrology/sessions/:id/begin", h.AstrologyBegin)
	e.POST("/v1/astrology/sessions/:id/interpret", h.AstrologyInterpret)
	e.POST("/v1/astrology/sessions/:id/vip", h.AstrologyVIP)
	e.POST("/v1/astrology/sessions/:id/profile", h.AstrologyProfile)
	e.POST("/v1/astrology/sessions/:id/followup", h.AstrologyFollowup)
	e.POST("/v1/astrology/sessions/:id/save", h.AstrologySave)
	e.POST("/v1/astrology/sessions/:id/reset", h.AstrologyReset)

	e.POST("/v1/dream/sessions", h.CreateDream)
	e.GET("/v1/dream/sessions/:id", h.DreamState)
	e.POST("/v1/dream/sessions/:id/interpret", h.DreamInterpret)
	e.POST("/v1/dream/sessions/:id/vip", h.DreamVIP)
	e.POST("/v1/dream/sessions/:id/profile", h.DreamProfile)
	e.POST("/v1/dream/sessions/:id/save", h.DreamSave)
	e.POST("/v1/dream/sessions/:id/reset", h.DreamReset)

	e.POST("/v1/huangli/sessions", h.CreateHuangli)
	e.GET("/v1/huangli/sessions/:id", h.HuangliState)
	e.POST("/v1/huangli/sessions/:id/lookup", h.HuangliLookup)
	e.POST("/v1/huangli/sessions/:id/plan", h.HuangliPlan)
	e.POST("/v1/huangli/sessions/:id/vip", h.HuangliVIP)
	e.POST("/v1/huangli/sessions/:id/profile", h.HuangliProfile)
	e.POST("/v1/huangli/sessions/:id/save", h.HuangliSave)
	e.POST("/v1/huangli/sessions/:id/reset", h.HuangliReset)

	e.GET("/v1/history", h.ListHistory)
	e.DELETE("/v1/history/:id", h.DeleteHistory)

	e.GET("/v1/profile", h.GetProfile)
	e.PUT("/v1/profile", h.PutProfile)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// --- tarot ---

func (h *Handler) CreateTarot(c echo.Context) error {
	sess := h.sessions.CreateTarot()
	return c.JSON(http.StatusCreated, sess.State())
}

func (h *Handler) TarotState(c echo.Context) error {
	sess, err := h.sessions.Tarot(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, sess.State())
}

func (h *Handler) TarotQuestion(c echo.Context) error {
	sess, err := h.sessions.Tarot(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	var req TarotQuestionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := sess.Begin(req.Question, req.Gender); err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, sess.State())
}

func (h *Handler) TarotReveal(c echo.Context) error {
	sess, err := h.sessions.Tarot(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	if err := sess.RevealFan(); err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, sess.State())
}

func (h *Handler) TarotPick(c echo.Context) error {
	sess, err := h.sessions.Tarot(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	var req TarotPickRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := sess.Pick(req.Slot); err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, sess.State())
}

func (h *Handler) TarotInterpret(c echo.Context) error {
	sess, err := h.sessions.Tarot(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	analysis, err := sess.Interpret(c.Request().Context())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}

func (h *Handler) TarotVIP(c echo.Context) error {
	sess, err := h.sessions.Tarot(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	outcome, err := sess.UnlockVIP(c.Request().Context())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, VIPResponse{Outcome: outcome})
}

func (h *Handler) TarotProfile(c echo.Context) error {
	sess, err := h.sessions.Tarot(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	profile, ok := bindProfile(c)
	if !ok {
		return nil
	}
	outcome, err := sess.CompleteProfile(c.Request().Context(), profile)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, VIPResponse{Outcome: outcome})
}

func (h *Handler) TarotFollowup(c echo.Context) error {
	sess, err := h.sessions.Tarot(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	var req FollowupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	exchange, err := sess.Followup(c.Request().Context(), req.Question)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, exchange)
}

func (h *Handler) TarotSave(c echo.Context) error {
	sess, err := h.sessions.Tarot(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	id, err := sess.Save()
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, SaveResponse{ID: id})
}

func (h *Handler) TarotReset(c echo.Context) error {
	sess, err := h.sessions.Tarot(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	sess.Reset()
	return c.JSON(http.StatusOK, sess.State())
}

// --- astrology ---

func (h *Handler) CreateAstrology(c echo.Context) error {
	sess := h.sessions.CreateAstrology()
	return c.JSON(http.StatusCreated, sess.State())
}

func (h *Handler) AstrologyState(c echo.Context) error {
	sess, err := h.sessions.Astrology(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, sess.State())
}

func (h *Handler) AstrologyBegin(c echo.Context) error {
	sess, err := h.sessions.Astrology(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	var req AstrologyBeginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	user := domain.UserInfo{
		Name:      req.Name,
		BirthDate: req.BirthDate,
		BirthTime: req.BirthTime,
		Gender:    req.Gender,
	}
	if _, err := sess.Begin(c.Request().Context(), user); err != nil {
		// The chart survives a generation failure; report the failure but
		// let the client retry via interpret.
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, sess.State())
}

func (h *Handler) AstrologyInterpret(c echo.Context) error {
	sess, err := h.sessions.Astrology(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	analysis, err := sess.Interpret(c.Request().Context())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}

func (h *Handler) AstrologyVIP(c echo.Context) error {
	sess, err := h.sessions.Astrology(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	outcome, err := sess.UnlockVIP(c.Request().Context())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, VIPResponse{Outcome: outcome})
}

func (h *Handler) AstrologyProfile(c echo.Context) error {
	sess, err := h.sessions.Astrology(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	profile, ok := bindProfile(c)
	if !ok {
		return nil
	}
	outcome, err := sess.CompleteProfile(c.Request().Context(), profile)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, VIPResponse{Outcome: outcome})
}

func (h *Handler) AstrologyFollowup(c echo.Context) error {
	sess, err := h.sessions.Astrology(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	var req FollowupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	exchange, err := sess.Followup(c.Request().Context(), req.Question)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, exchange)
}

func (h *Handler) AstrologySave(c echo.Context) error {
	sess, err := h.sessions.Astrology(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	id, err := sess.Save()
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, SaveResponse{ID: id})
}

func (h *Handler) AstrologyReset(c echo.Context) error {
	sess, err := h.sessions.Astrology(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	sess.Reset()
	return c.JSON(http.StatusOK, sess.State())
}

// --- dream ---

func (h *Handler) CreateDream(c echo.Context) error {
	sess := h.sessions.CreateDream()
	return c.JSON(http.StatusCreated, sess.State())
}

func (h *Handler) DreamState(c echo.Context) error {
	sess, err := h.sessions.Dream(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, sess.State())
}

func (h *Handler) DreamInterpret(c echo.Context) error {
	sess, err := h.sessions.Dream(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	var req DreamInterpretRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	analysis, err := sess.Interpret(c.Request().Context(), req.Content, req.Style)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}

func (h *Handler) DreamVIP(c echo.Context) error {
	sess, err := h.sessions.Dream(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	outcome, err := sess.UnlockVIP(c.Request().Context())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, VIPResponse{Outcome: outcome})
}

func (h *Handler) DreamProfile(c echo.Context) error {
	sess, err := h.sessions.Dream(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	profile, ok := bindProfile(c)
	if !ok {
		return nil
	}
	outcome, err := sess.CompleteProfile(c.Request().Context(), profile)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, VIPResponse{Outcome: outcome})
}

func (h *Handler) DreamSave(c echo.Context) error {
	sess, err := h.sessions.Dream(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	id, err := sess.Save()
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, SaveResponse{ID: id})
}

func (h *Handler) DreamReset(c echo.Context) error {
	sess, err := h.sessions.Dream(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	sess.Reset()
	return c.JSON(http.StatusOK, sess.State())
}

// --- huangli ---

func (h *Handler) CreateHuangli(c echo.Context) error {
	sess := h.sessions.CreateHuangli()
	return c.JSON(http.StatusCreated, sess.State())
}

func (h *Handler) HuangliState(c echo.Context) error {
	sess, err := h.sessions.Huangli(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, sess.State())
}

func (h *Handler) HuangliLookup(c echo.Context) error {
	sess, err := h.sessions.Huangli(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	var req HuangliLookupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	data, err := sess.Lookup(c.Request().Context(), req.Date)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

func (h *Handler) HuangliPlan(c echo.Context) error {
	sess, err := h.sessions.Huangli(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	var req HuangliPlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	exchange, err := sess.Plan(c.Request().Context(), req.Plan)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, exchange)
}

func (h *Handler) HuangliVIP(c echo.Context) error {
	sess, err := h.sessions.Huangli(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	outcome, err := sess.UnlockVIP(c.Request().Context())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, VIPResponse{Outcome: outcome})
}

func (h *Handler) HuangliProfile(c echo.Context) error {
	sess, err := h.sessions.Huangli(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	profile, ok := bindProfile(c)
	if !ok {
		return nil
	}
	outcome, err := sess.CompleteProfile(c.Request().Context(), profile)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, VIPResponse{Outcome: outcome})
}

func (h *Handler) HuangliSave(c echo.Context) error {
	sess, err := h.sessions.Huangli(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	id, err := sess.Save()
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, SaveResponse{ID: id})
}

func (h *Handler) HuangliReset(c echo.Context) error {
	sess, err := h.sessions.Huangli(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	sess.Reset()
	return c.JSON(http.StatusOK, sess.State())
}

// --- history and profile ---

func (h *Handler) ListHistory(c echo.Context) error {
	return c.JSON(http.StatusOK, HistoryResponse{Records: h.history.List()})
}

func (h *Handler) DeleteHistory(c echo.Context) error {
	if err := h.history.Delete(c.Param("id")); err != nil {
		return h.mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, ProfileResponse{
		Profile: h.profiles.Current(),
		Seen:    h.profiles.Seen(),
	})
}

func (h *Handler) PutProfile(c echo.Context) error {
	var profile domain.UserProfile
	if err := c.Bind(&profile); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.profiles.Update(profile); err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, ProfileResponse{
		Profile: h.profiles.Current(),
		Seen:    h.profiles.Seen(),
	})
}

// bindProfile decodes the profile form. Returns (nil, true) for an explicit
// skip; (nil, false) means the response was already written.
func bindProfile(c echo.Context) (*domain.UserProfile, bool) {
	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return nil, false
	}
	if req.Skip {
		return nil, true
	}
	if req.Profile == nil {
		_ = c.JSON(http.StatusBadRequest, ErrorResponse{Error: "profile or skip required"})
		return nil, false
	}
	return req.Profile, true
}

func (h *Handler) mapError(c echo.Context, err error) error {
	requestID, _ := c.Get("request_id").(string)

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrSuperseded):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "reading was superseded"})
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrMalformedResponse):
		h.logger.Error("generation failure", "request_id", requestID, "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: upstreamUnavailableMsg})
	case errors.Is(err, domain.ErrMissingCredential), errors.Is(err, domain.ErrInvalidRequest):
		h.logger.Error("generation misconfigured", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	default:
		h.logger.Error("internal error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
