package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"rootfinder/internal/metrics"
	"rootfinder/internal/pdfutil"
)

type pdfPage struct {
	Error    string
	MaxFiles int
	MaxMB    int64
}

// PDFForm — страница утилиты PDF
func (s *Server) PDFForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "только GET", http.StatusMethodNotAllowed)
		return
	}
	s.render(w, "pdf.html", s.pdfPage(""))
}

func (s *Server) pdfPage(errMsg string) pdfPage {
	return pdfPage{Error: errMsg, MaxFiles: s.cfg.PDF.MaxFiles, MaxMB: s.cfg.PDF.MaxUploadMB}
}

// pdfError показывает форму с ошибкой
func (s *Server) pdfError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	s.render(w, "pdf.html", s.pdfPage(err.Error()))
}

// MergePDF склеивает загруженные файлы (поле files) в порядке загрузки
func (s *Server) MergePDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}
	if err := s.parseUpload(w, r); err != nil {
		s.pdfError(w, http.StatusBadRequest, err)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) > s.cfg.PDF.MaxFiles {
		s.pdfError(w, http.StatusBadRequest, fmt.Errorf("не больше %d файлов за раз", s.cfg.PDF.MaxFiles))
		return
	}
	inputs := make([]io.ReadSeeker, 0, len(headers))
	for _, fh := range headers {
		rs, err := readUpload(fh)
		if err != nil {
			s.pdfError(w, http.StatusBadRequest, err)
			return
		}
		inputs = append(inputs, rs)
	}

	var out bytes.Buffer
	err := pdfutil.Merge(inputs, &out)
	metrics.ObservePDF("merge", err)
	if err != nil {
		code := http.StatusUnprocessableEntity
		if errors.Is(err, pdfutil.ErrTooFewFiles) {
			code = http.StatusBadRequest
		}
		s.log.Warn("объединение PDF", "files", len(inputs), "err", err)
		s.pdfError(w, code, err)
		return
	}

	s.log.Info("PDF объединены", "files", len(inputs), "bytes", out.Len())
	sendPDF(w, "merged_"+uuid.NewString()[:8]+".pdf", out.Bytes())
}

// ExtractPDF оставляет в файле (поле file) страницы из поля pages
func (s *Server) ExtractPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}
	if err := s.parseUpload(w, r); err != nil {
		s.pdfError(w, http.StatusBadRequest, err)
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) != 1 {
		s.pdfError(w, http.StatusBadRequest, errors.New("выберите один PDF-файл"))
		return
	}
	rs, err := readUpload(headers[0])
	if err != nil {
		s.pdfError(w, http.StatusBadRequest, err)
		return
	}

	var out bytes.Buffer
	pages, err := pdfutil.Extract(rs, r.FormValue("pages"), &out)
	metrics.ObservePDF("extract", err)
	if err != nil {
		code := http.StatusUnprocessableEntity
		if errors.Is(err, pdfutil.ErrPageRange) {
			code = http.StatusBadRequest
		}
		s.log.Warn("извлечение страниц", "pages", r.FormValue("pages"), "err", err)
		s.pdfError(w, code, err)
		return
	}

	s.log.Info("страницы извлечены", "pages", pages, "bytes", out.Len())
	w.Header().Set("X-Pages", strconv.Itoa(len(pages)))
	sendPDF(w, "pages_"+uuid.NewString()[:8]+".pdf", out.Bytes())
}

func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) error {
	limit := s.cfg.PDF.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("загрузка больше %d МБ", s.cfg.PDF.MaxUploadMB)
		}
		return fmt.Errorf("ошибка формы: %w", err)
	}
	return nil
}

func readUpload(fh *multipart.FileHeader) (io.ReadSeeker, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	return bytes.NewReader(b), nil
}

func sendPDF(w http.ResponseWriter, name string, b []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	_, _ = w.Write(b)
}
