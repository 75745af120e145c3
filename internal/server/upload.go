package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tanahlink/tanahd/internal/models"
)

const maxUploadBytes = 16 << 20

// decodeSubmission accepts either a JSON body or a multipart form carrying an
// optional certificate file. An uploaded file is stored under the uploads
// directory and fingerprinted with SHA-256; only the hex fingerprint enters
// the core.
func (s *Server) decodeSubmission(r *http.Request) (models.SubmitRequest, error) {
	var req models.SubmitRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid request body: %w", err)
		}
		return req, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return req, fmt.Errorf("invalid multipart form: %w", err)
	}

	req.Nama = r.FormValue("nama")
	req.NomorSertifikat = r.FormValue("nomor_sertifikat")
	req.Lokasi = r.FormValue("lokasi")
	req.Luas = r.FormValue("luas")

	file, header, err := r.FormFile("file")
	if err == http.ErrMissingFile {
		return req, nil
	}
	if err != nil {
		return req, fmt.Errorf("invalid certificate upload: %w", err)
	}
	defer file.Close()

	fileHash, err := s.storeUpload(file, header.Filename)
	if err != nil {
		return req, err
	}
	req.FileHash = fileHash

	return req, nil
}

// storeUpload writes the certificate to the uploads directory and returns its
// SHA-256 fingerprint, the same digest used for block hashing.
func (s *Server) storeUpload(file io.Reader, name string) (string, error) {
	if s.uploadDir == "" {
		return "", fmt.Errorf("certificate uploads are disabled")
	}
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	dst := filepath.Join(s.uploadDir, filepath.Base(name))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to store certificate: %w", err)
	}
	defer out.Close()

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hasher), file); err != nil {
		return "", fmt.Errorf("failed to store certificate: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
