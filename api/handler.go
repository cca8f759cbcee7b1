package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "descstats/internal/errors"
	"descstats/internal/ingest"
	"descstats/internal/present"
	"descstats/internal/stats"
	"descstats/middleware"
)

const ServiceName = "descstats"

// multipartOverhead is the slack allowed on top of MaxUploadBytes for
// multipart boundaries and part headers.
const multipartOverhead = 64 << 10

// Options configures the handler's ingestion, rendering and size limits.
type Options struct {
	Ingest         ingest.Options
	Display        present.Options
	MaxTextBytes   int
	MaxUploadBytes int64
}

func DefaultOptions() Options {
	return Options{
		Ingest:         ingest.DefaultOptions(),
		Display:        present.DefaultOptions(),
		MaxTextBytes:   middleware.DefaultMaxTextBytes,
		MaxUploadBytes: 10 << 20,
	}
}

// Handler serves the statistics endpoints.
type Handler struct {
	engine    *stats.Engine
	acquirer  *ingest.Acquirer
	presenter *present.Presenter
	opts      Options
}

func NewHandler(opts Options) *Handler {
	def := DefaultOptions()
	if opts.MaxTextBytes <= 0 {
		opts.MaxTextBytes = def.MaxTextBytes
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = def.MaxUploadBytes
	}
	return &Handler{
		engine:    stats.NewEngine(),
		acquirer:  ingest.NewAcquirer(opts.Ingest),
		presenter: present.NewPresenter(opts.Display),
		opts:      opts,
	}
}

// TextRequest is the body of POST /statistics/text.
type TextRequest struct {
	Text string `json:"text" binding:"required"`
}

// ColumnReport is the report for a single numeric column.
type ColumnReport struct {
	Name       string       `json:"name"`
	Count      int          `json:"count"`
	Statistics stats.Report `json:"statistics"`
}

// ReportResponse is the JSON body of a successful statistics request.
type ReportResponse struct {
	Source     string         `json:"source"`
	Format     ingest.Format  `json:"format"`
	Count      int            `json:"count"`
	Statistics stats.Report   `json:"statistics"`
	Columns    []ColumnReport `json:"columns,omitempty"`
	Skipped    []string       `json:"skipped,omitempty"`
	Preview    [][]string     `json:"preview,omitempty"`
}

// ChartResponse is returned for format=chart.
type ChartResponse struct {
	Source string        `json:"source"`
	Chart  present.Chart `json:"chart"`
	Text   string        `json:"text"`
}

// TextStatistics computes statistics over a pasted list of numbers.
func (h *Handler) TextStatistics(c *gin.Context) {
	v, err := parseView(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindFailure(err))
		return
	}

	if errs := middleware.ValidateText(req.Text, h.opts.MaxTextBytes); len(errs) > 0 {
		h.failValidation(c, errs)
		return
	}

	ext, err := h.acquirer.FromText(middleware.SanitizeInput(req.Text))
	if err != nil {
		h.fail(c, parseFailure(err))
		return
	}

	h.respond(c, ext, v)
}

// FileStatistics computes statistics over the numeric columns of an uploaded file.
func (h *Handler) FileStatistics(c *gin.Context) {
	v, err := parseView(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.fail(c, bindFailure(err))
		return
	}

	if errs := middleware.ValidateUpload(header.Filename, header.Size, h.opts.MaxUploadBytes); len(errs) > 0 {
		h.failValidation(c, errs)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.fail(c, apperrors.Wrapf(err, "failed to open uploaded file %q", header.Filename))
		return
	}
	defer file.Close()

	ext, err := h.acquirer.FromFile(header.Filename, file)
	if err != nil {
		h.fail(c, parseFailure(err))
		return
	}

	h.respond(c, ext, v)
}

// StatisticNames lists the statistics every report contains, in order.
func (h *Handler) StatisticNames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"names": stats.Names()})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}

func (h *Handler) respond(c *gin.Context, ext *ingest.Extraction, v view) {
	report := h.engine.Compute(ext.Sample)

	switch v.format {
	case "text":
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(h.presenter.Table(report)))
	case "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(h.presenter.Markdown(report)))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", h.presenter.HTML(report))
	case "chart":
		chart := h.presenter.Chart(report)
		c.JSON(http.StatusOK, ChartResponse{Source: ext.Source, Chart: chart, Text: chart.String()})
	default:
		resp := ReportResponse{
			Source:     ext.Source,
			Format:     ext.Format,
			Count:      len(ext.Sample),
			Statistics: report,
			Skipped:    ext.Skipped,
			Preview:    ext.Preview,
		}
		if v.perColumn {
			for _, col := range ext.Columns {
				resp.Columns = append(resp.Columns, ColumnReport{
					Name:       col.Name,
					Count:      len(col.Sample),
					Statistics: h.engine.Compute(col.Sample),
				})
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

type view struct {
	format    string
	perColumn bool
}

func parseView(c *gin.Context) (view, error) {
	v := view{format: c.DefaultQuery("format", "json")}
	switch v.format {
	case "json", "text", "markdown", "html", "chart":
	default:
		return v, apperrors.InvalidInput("unknown format " + strconv.Quote(v.format) +
			": expected json, text, markdown, html or chart")
	}

	if raw := c.Query("per_column"); raw != "" {
		perColumn, err := strconv.ParseBool(raw)
		if err != nil {
			return v, apperrors.InvalidInput("per_column must be true or false")
		}
		v.perColumn = perColumn
	}
	return v, nil
}

func bindFailure(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.PayloadTooLarge("request body too large")
	}
	return &apperrors.AppError{Code: apperrors.CodeValidationError, Message: err.Error(), Cause: err}
}

// parseFailure turns an acquirer error into the client-facing AppError.
func parseFailure(err error) error {
	var perr *ingest.ParseError
	if !errors.As(err, &perr) {
		return apperrors.Wrap(err, "failed to read input")
	}
	code := apperrors.CodeParseError
	if perr.Kind == ingest.KindUnsupportedFormat {
		code = apperrors.CodeUnsupportedFormat
	}
	var tooLarge *http.MaxBytesError
	if errors.As(perr, &tooLarge) {
		code = apperrors.CodePayloadTooLarge
	}
	return apperrors.WithCode(code, perr)
}

func statusFor(code string) int {
	switch code {
	case apperrors.CodeValidationError, apperrors.CodeInvalidInput,
		apperrors.CodeParseError, apperrors.CodeUnsupportedFormat:
		return http.StatusBadRequest
	case apperrors.CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	code := apperrors.GetCode(err)
	status := statusFor(code)

	message := "internal error"
	if status == http.StatusInternalServerError {
		log.Printf("[api] %s: %v", c.Request.URL.Path, err)
	} else {
		message = err.Error()
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
	}

	c.JSON(status, gin.H{"error": message, "code": code})
}

func (h *Handler) failValidation(c *gin.Context, errs []middleware.ValidationError) {
	_ = c.Error(apperrors.ValidationError(errs[0].Reason))
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   errs[0].Reason,
		"code":    apperrors.CodeValidationError,
		"details": errs,
	})
}
