package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/mshaim001-hue/ikap2/internal/logger"
	"github.com/mshaim001-hue/ikap2/internal/models"
	"github.com/mshaim001-hue/ikap2/internal/statement"
)

// Extractor runs the statement pipeline on one uploaded PDF.
type Extractor interface {
	ExtractNamed(ctx context.Context, filename string, pdf []byte, bankName string) (*models.StatementExtraction, error)
}

var allowedContentTypes = map[string]bool{
	"application/pdf":          true,
	"application/octet-stream": true,
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Extractor Extractor
	Workbooks *WorkbookStore
	Log       zerolog.Logger
}

// NewApp builds the fiber application with middleware and routes.
func NewApp(h *Handler, bodyLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(RequestLogger(h.Log))
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/", HandleIndex)
	app.Get("/health", HandleHealth)
	app.Get("/api/health", HandleHealth)
	app.Post("/process", h.HandleProcess)
	app.Get("/workbooks/:id", h.HandleWorkbook)
}

// HandleHealth reports that the server is up.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleIndex serves the upload page.
func HandleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(indexPage)
}

// HandleProcess extracts credit rows from every uploaded file in the
// "files" field. A failing file is reported in its own result and does not
// stop the others.
func (h *Handler) HandleProcess(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
	}
	files := form.File["files"]
	if len(files) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}

	ctx := c.UserContext()
	log := logger.FromContext(ctx)

	results := make([]models.DocumentResult, 0, len(files))
	for i, fh := range files {
		fileLog := log.With().Str("file", fh.Filename).Int("index", i+1).Int("total", len(files)).Logger()

		result, err := h.processFile(ctx, fh)
		if err != nil {
			fileLog.Error().Err(err).Msg("file failed")
			result = models.DocumentResult{
				SourceFile:   fh.Filename,
				Metadata:     map[string]string{},
				Transactions: []models.FlatRow{},
				Error:        err.Error(),
			}
		} else {
			fileLog.Info().Int("transactions", len(result.Transactions)).Msg("file processed")
		}
		results = append(results, result)
	}

	return c.JSON(results)
}

func (h *Handler) processFile(ctx context.Context, fh *multipart.FileHeader) (models.DocumentResult, error) {
	contentType := fh.Header.Get(fiber.HeaderContentType)
	if !allowedContentTypes[contentType] {
		return models.DocumentResult{}, fmt.Errorf("unsupported file type: %s", contentType)
	}

	f, err := fh.Open()
	if err != nil {
		return models.DocumentResult{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.DocumentResult{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return models.DocumentResult{}, fmt.Errorf("file %s is empty", fh.Filename)
	}

	extraction, err := h.Extractor.ExtractNamed(ctx, fh.Filename, data, fh.Filename)
	if err != nil {
		return models.DocumentResult{}, err
	}

	// A nil slice would marshal to null rather than [].
	rows := statement.MergeTables(extraction.Tables)
	if rows == nil {
		rows = []models.FlatRow{}
	}
	result := models.DocumentResult{
		SourceFile:   fh.Filename,
		Metadata:     extraction.Metadata,
		Transactions: rows,
	}
	if h.Workbooks != nil && len(extraction.Workbook) > 0 {
		result.WorkbookID = h.Workbooks.Put(extraction.WorkbookName, extraction.Workbook)
	}
	return result, nil
}

// HandleWorkbook downloads a converted workbook by id.
func (h *Handler) HandleWorkbook(c *fiber.Ctx) error {
	if h.Workbooks == nil {
		return fiber.ErrNotFound
	}
	wb, ok := h.Workbooks.Get(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "workbook not found or expired")
	}
	c.Attachment(wb.Name)
	return c.Send(wb.Data)
}

const indexPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Statement credit rows</title></head>
<body>
<h1>Bank statement credit rows</h1>
<form id="upload" enctype="multipart/form-data">
  <input type="file" name="files" accept="application/pdf" multiple>
  <button type="submit">Process</button>
</form>
<pre id="result"></pre>
<script>
document.getElementById('upload').addEventListener('submit', async (e) => {
  e.preventDefault();
  const out = document.getElementById('result');
  out.textContent = 'Processing...';
  const resp = await fetch('/process', {method: 'POST', body: new FormData(e.target)});
  if (resp.status === 204) {
    out.textContent = 'No files uploaded.';
    return;
  }
  out.textContent = JSON.stringify(await resp.json(), null, 2);
});
</script>
</body>
</html>
`
