package daemon

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"vidlingo/internal/api"
	"vidlingo/internal/fileutil"
	"vidlingo/internal/language"
	"vidlingo/internal/logging"
	"vidlingo/internal/storage"
	"vidlingo/internal/textutil"
)

const (
	uploadField     = "file"
	targetField     = "target"
	multipartMemory = 32 << 20
)

func (s *apiServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithContext(ctx, s.logger)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			s.writeError(w, http.StatusBadRequest, "No file part")
		default:
			s.writeError(w, http.StatusBadRequest, "Malformed upload")
		}
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		// An empty file input arrives as a plain value without a filename.
		if _, ok := r.MultipartForm.Value[uploadField]; ok {
			s.writeError(w, http.StatusBadRequest, "No selected file")
			return
		}
		s.writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()
	if strings.TrimSpace(header.Filename) == "" {
		s.writeError(w, http.StatusBadRequest, "No selected file")
		return
	}

	name := textutil.SecureFileName(header.Filename)
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "No selected file")
		return
	}
	if !s.cfg.AllowsExtension(name) {
		s.writeError(w, http.StatusUnsupportedMediaType, "Unsupported file type")
		return
	}

	target := s.cfg.Translation.TargetLanguage
	if raw := strings.TrimSpace(r.FormValue(targetField)); raw != "" {
		if !language.Valid(raw) {
			s.writeError(w, http.StatusBadRequest, "Unsupported target language")
			return
		}
		target = language.Normalize(raw)
	}

	if err := s.daemon.Admit(ctx); err != nil {
		if errors.Is(err, ErrQueueFull) {
			s.writeError(w, http.StatusServiceUnavailable, "Queue is full, try again later")
			return
		}
		logger.Error("admission check failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to queue upload")
		return
	}

	jobID := uuid.NewString()
	dir := filepath.Join(s.cfg.Paths.UploadDir, jobID)
	dest := filepath.Join(dir, name)
	err = fileutil.WriteAtomicFunc(dest, 0o644, func(out io.Writer) error {
		_, copyErr := io.Copy(out, file)
		return copyErr
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		logger.Error("store upload failed",
			logging.Error(err),
			logging.String("path", dest),
			logging.String(logging.FieldEventType, "upload_store_failed"),
			logging.String(logging.FieldErrorHint, "check upload_dir free space and permissions"),
		)
		s.writeError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	job, err := s.daemon.Submit(ctx, jobID, dest, header.Filename, target)
	if err != nil {
		_ = os.RemoveAll(dir)
		if errors.Is(err, ErrQueueFull) {
			s.writeError(w, http.StatusServiceUnavailable, "Queue is full, try again later")
			return
		}
		logger.Error("enqueue upload failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to queue upload")
		return
	}

	logger.Info("upload accepted",
		logging.String(logging.FieldEventType, "upload_accepted"),
		logging.String(logging.FieldJobID, job.JobID),
		logging.String("file", name),
		logging.Int64("bytes", header.Size),
		logging.String("target", target),
	)
	s.writeJSON(w, http.StatusOK, api.UploadResponse{
		Message:   api.ProcessingStartedMessage,
		JobID:     job.JobID,
		StatusURL: api.JobURL(job.JobID),
	})
}

func (s *apiServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	resolved, ok := resolveDownload(s.cfg.Paths.ProcessedDir, r.PathValue("path"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "File not found")
		return
	}
	file, err := os.Open(resolved)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "File not found")
		return
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		s.writeError(w, http.StatusNotFound, "File not found")
		return
	}

	name := filepath.Base(resolved)
	w.Header().Set("Content-Type", storage.ContentType(name))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), file)
}

// resolveDownload maps a requested relative path onto a regular file inside
// root. Requests that are absolute, contain "..", or resolve outside root
// through symlinks are rejected.
func resolveDownload(root, requested string) (string, bool) {
	if strings.TrimSpace(root) == "" || requested == "" {
		return "", false
	}
	if strings.ContainsRune(requested, 0) || strings.HasPrefix(requested, "/") || strings.Contains(requested, "\\") {
		return "", false
	}
	for _, segment := range strings.Split(requested, "/") {
		if segment == ".." {
			return "", false
		}
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", false
	}
	realPath, err := filepath.EvalSymlinks(filepath.Join(realRoot, filepath.FromSlash(requested)))
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(realRoot, realPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	info, err := os.Stat(realPath)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return realPath, true
}
