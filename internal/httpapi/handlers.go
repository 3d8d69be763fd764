package httpapi

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alnah/go-invoicedocx"
)

// errorBody is the JSON shape of every failure.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Error: msg, Code: code})
}

// statusFor maps an error kind to an HTTP status.
func statusFor(kind invoicedocx.Kind) int {
	switch kind {
	case invoicedocx.KindInvalidRequest:
		return http.StatusBadRequest
	case invoicedocx.KindAssetFetch:
		return http.StatusBadGateway
	case invoicedocx.KindTimeout:
		return http.StatusGatewayTimeout
	case invoicedocx.KindConversion:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	endpoints := gin.H{
		"/health":           "Check API health",
		"/generate-invoice": "POST - Generate invoice (DOCX and PDF)",
	}
	if s.metrics != nil {
		endpoints["/metrics"] = "Prometheus metrics"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Invoice Generator API",
		"status":    "running",
		"endpoints": endpoints,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleGenerate(c *gin.Context) {
	if s.cfg.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	}

	var in invoicedocx.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		s.metrics.RecordRender("unknown", string(invoicedocx.KindInvalidRequest))
		writeError(c, http.StatusBadRequest, string(invoicedocx.KindInvalidRequest), decodeMessage(err))
		return
	}

	result, err := s.renderer.Render(c.Request.Context(), in)
	if err != nil {
		kind := invoicedocx.KindOf(err)
		s.metrics.RecordRender(formatLabel(in.Format), string(kind))
		s.logger.Error("render failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		writeError(c, statusFor(kind), string(kind), publicMessage(kind, err))
		return
	}
	s.metrics.RecordRender(string(result.Format), "")

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename}))
	c.Header("Content-Length", strconv.Itoa(len(result.Data)))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// publicMessage hides internal details from callers.
func publicMessage(kind invoicedocx.Kind, err error) string {
	if kind == invoicedocx.KindInternal {
		return "internal error"
	}
	return err.Error()
}

func decodeMessage(err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "request body too large"
	}
	return "invalid JSON body: " + err.Error()
}

// formatLabel keeps metric labels bounded for unparsable formats.
func formatLabel(f invoicedocx.Format) string {
	parsed, err := invoicedocx.ParseFormat(string(f))
	if err != nil {
		return "unknown"
	}
	return string(parsed)
}
