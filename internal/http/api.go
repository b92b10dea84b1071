package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"polls-server/internal/domain"
	"polls-server/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	polls  service.PollService
	users  service.UserService
	tokens *TokenIssuer
	now    func() time.Time
}

// NewHandler builds the HTTP handler. A nil clock defaults to time.Now; the
// clock only feeds the was_published_recently flag in responses.
func NewHandler(polls service.PollService, users service.UserService, tokens *TokenIssuer, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		polls:  polls,
		users:  users,
		tokens: tokens,
		now:    now,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		api.GET("/questions", h.listQuestions)
		api.GET("/questions/:id", h.getQuestion)
		api.GET("/questions/:id/results", h.getResults)
		api.POST("/questions/:id/vote", h.vote)

		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)

		admin := api.Group("", h.requireAuth())
		{
			admin.POST("/questions", h.createQuestion)
			admin.POST("/questions/:id/choices", h.addChoice)
			admin.DELETE("/questions/:id", h.deleteQuestion)
			admin.GET("/admin/questions", h.listAllQuestions)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type createQuestionRequest struct {
	Text    string     `json:"text" binding:"required"`
	PubDate *time.Time `json:"pub_date"`
}

type addChoiceRequest struct {
	Text string `json:"text" binding:"required"`
}

type voteRequest struct {
	ChoiceID int64 `json:"choice_id" binding:"required"`
}

type registerRequest struct {
	Username           string `json:"username" binding:"required"`
	Password           string `json:"password" binding:"required"`
	RegistrationSecret string `json:"registration_secret" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type QuestionResponse struct {
	ID                   int64            `json:"id"`
	Text                 string           `json:"text"`
	PubDate              string           `json:"pub_date"`
	WasPublishedRecently bool             `json:"was_published_recently"`
	Choices              []ChoiceResponse `json:"choices,omitempty"`
}

type ChoiceResponse struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Votes int64  `json:"votes"`
}

type VoteResponse struct {
	ReceiptID string `json:"receipt_id"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) listQuestions(c *gin.Context) {
	questions, err := h.polls.ListLatest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.questionsToResponse(questions))
}

func (h *Handler) listAllQuestions(c *gin.Context) {
	questions, err := h.polls.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.questionsToResponse(questions))
}

func (h *Handler) getQuestion(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}

	question, err := h.polls.GetQuestion(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.questionToResponse(*question))
}

func (h *Handler) getResults(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}

	question, err := h.polls.GetResults(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.questionToResponse(*question))
}

func (h *Handler) vote(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.polls.Vote(c.Request.Context(), id, req.ChoiceID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, VoteResponse{ReceiptID: receipt})
}

func (h *Handler) createQuestion(c *gin.Context) {
	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.polls.CreateQuestion(c.Request.Context(), req.Text, req.PubDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, h.questionToResponse(*question))
}

func (h *Handler) addChoice(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}

	var req addChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	choice, err := h.polls.AddChoice(c.Request.Context(), id, req.Text)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ChoiceResponse{
		ID:    choice.ID,
		Text:  choice.Text,
		Votes: choice.Votes,
	})
}

func (h *Handler) deleteQuestion(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}

	if err := h.polls.DeleteQuestion(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password, req.RegistrationSecret)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRegistrationSecret):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func questionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) questionsToResponse(questions []domain.Question) []QuestionResponse {
	resp := make([]QuestionResponse, len(questions))
	for i := range questions {
		resp[i] = h.questionToResponse(questions[i])
	}
	return resp
}

func (h *Handler) questionToResponse(question domain.Question) QuestionResponse {
	resp := QuestionResponse{
		ID:                   question.ID,
		Text:                 question.Text,
		PubDate:              question.PubDate.Format(time.RFC3339),
		WasPublishedRecently: question.WasPublishedRecently(h.now()),
	}
	if len(question.Choices) > 0 {
		resp.Choices = make([]ChoiceResponse, len(question.Choices))
		for i, choice := range question.Choices {
			resp.Choices[i] = ChoiceResponse{
				ID:    choice.ID,
				Text:  choice.Text,
				Votes: choice.Votes,
			}
		}
	}
	return resp
}
