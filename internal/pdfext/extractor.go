package pdfext

import (
	"bytes"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/mgaillard/scandoc/internal/common"
	"github.com/mgaillard/scandoc/internal/entity"
)

var pdfSignature = []byte("%PDF")

const previewLength = 100

// Extractor is the alternate, engine-free entry path: it decodes a text-bearing
// PDF's content streams and runs a reduced single-pass parse per page,
// independent of the catalog-driven pipeline.
type Extractor struct {
	logger *slog.Logger
	decode func(pdfBytes []byte) ([]string, error)
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, decode: decodePages}
}

// Extract validates the PDF signature, decodes text runs page by page
// (joined with single spaces, blank pages discarded), and returns one
// structured result per page with a content preview.
func (x *Extractor) Extract(pdfBytes []byte, filename string) (*entity.PDFResult, error) {
	if !bytes.HasPrefix(pdfBytes, pdfSignature) {
		return nil, common.NewInputError("not a PDF: missing %PDF signature", nil)
	}

	raws, err := x.decode(pdfBytes)
	if err != nil {
		return nil, common.NewInputError("unreadable PDF", err)
	}

	var pageTexts []string
	for _, raw := range raws {
		// form feeds inside a content stream mark additional page breaks
		for _, chunk := range strings.Split(raw, "\f") {
			chunk = strings.Join(strings.Fields(chunk), " ")
			if chunk == "" {
				continue
			}
			pageTexts = append(pageTexts, chunk)
		}
	}
	if len(pageTexts) == 0 {
		return nil, common.NewInputError("no extractable text in PDF", nil)
	}

	res := &entity.PDFResult{
		Success:    true,
		FileName:   filename,
		TotalPages: len(pageTexts),
		Metadata: entity.PDFMetadata{
			ExtractionDate: time.Now().UTC().Format(time.RFC3339),
			Source:         filename,
		},
	}
	for i, text := range pageTexts {
		res.Pages = append(res.Pages, entity.PageResult{
			ID:            i + 1,
			Name:          "Page " + strconv.Itoa(i+1),
			ContentLength: len(text),
			Preview:       preview(text),
			ExtractedData: parsePage(text),
		})
	}
	x.logger.Debug("pdf structured extraction done",
		"file", filename, "pages", len(pageTexts))
	return res, nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLength {
		return s
	}
	return string(r[:previewLength])
}

// decodePages reads and validates the document, then decodes every page's
// content stream into one raw text string per page.
func decodePages(pdfBytes []byte) ([]string, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdfBytes), conf)
	if err != nil {
		return nil, err
	}
	raws := make([]string, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		raws = append(raws, extractPageText(ctx, pageNr))
	}
	return raws, nil
}

// extractPageText decodes one page's content stream into a text run string.
func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return decodeTextRuns(data)
}
