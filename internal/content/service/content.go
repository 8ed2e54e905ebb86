package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/yt-content-manager/internal/conf"
	"github.com/lk2023060901/yt-content-manager/internal/content/types"
	apperrors "github.com/lk2023060901/yt-content-manager/internal/pkg/errors"
	"github.com/lk2023060901/yt-content-manager/internal/pkg/logger"
	"github.com/lk2023060901/yt-content-manager/internal/pkg/response"
	"go.uber.org/zap"
)

const (
	HealthMessage    = "YouTube Content Manager API is running!"
	DefaultUserInput = "No user input has been seen here"
)

// Generator produces content for a user brief.
type Generator interface {
	Generate(ctx context.Context, input string) (types.Completion, error)
}

// ContentService exposes the content routes.
type ContentService struct {
	uc          Generator
	errorStatus int
	logger      *logger.Logger
}

func NewContentService(uc Generator, cfg conf.GenerationConfig, log *logger.Logger) *ContentService {
	status := cfg.ErrorStatus
	if status == 0 {
		status = http.StatusOK
	}
	if log == nil {
		log = logger.L()
	}

	return &ContentService{
		uc:          uc,
		errorStatus: status,
		logger:      log,
	}
}

type healthResponse struct {
	Message string `json:"message"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Root is the liveness route.
func (s *ContentService) Root(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Message: HealthMessage})
}

// Generate handles GET /userInput/?userInput=...
func (s *ContentService) Generate(c *gin.Context) {
	input := c.DefaultQuery("userInput", DefaultUserInput)

	result, err := s.uc.Generate(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		s.logger.WithContext(c.Request.Context()).Error("content generation unavailable", zap.Error(err))
		response.HandleError(c, err)
		return
	}

	if !result.OK() {
		_ = c.Error(apperrors.Wrap(result.Err, generationCode(result.Err)))
		c.JSON(s.errorStatus, generateResponse{Response: result.String()})
		return
	}

	c.JSON(http.StatusOK, generateResponse{Response: result.String()})
}

func (s *ContentService) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", s.Root)
	r.GET("/userInput/", s.Generate)
}

func generationCode(err error) int {
	var perr *types.ProviderError
	if errors.As(err, &perr) && perr.IsTimeout() {
		return apperrors.ErrGenerationTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrGenerationTimeout
	}
	return apperrors.ErrGenerationFailed
}
