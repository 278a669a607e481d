// Package convert runs LibreOffice in headless mode to convert office
// documents between formats.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-diarias/internal/errors"
)

// Target formats
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// Converter converts the file at src into format, writing the result into
// outDir, and returns the path of the converted file.
type Converter interface {
	Convert(ctx context.Context, src, outDir, format string) (string, error)
}

// SOffice converts documents with the soffice binary
type SOffice struct {
	Binary  string
	Timeout time.Duration
	log     *logrus.Entry
}

// NewSOffice creates a converter. An empty binary means "soffice" from PATH.
func NewSOffice(binary string, timeout time.Duration, log *logrus.Entry) *SOffice {
	if binary == "" {
		binary = "soffice"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &SOffice{Binary: binary, Timeout: timeout, log: log}
}

// Convert runs one conversion. Each call gets its own LibreOffice profile
// directory so concurrent conversions do not contend for the profile lock.
func (s *SOffice) Convert(ctx context.Context, src, outDir, format string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	profile, err := os.MkdirTemp("", "soffice-profile-")
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeCollaborator, "Falha ao preparar a conversão do documento.", err)
	}
	defer os.RemoveAll(profile)

	args := []string{
		"-env:UserInstallation=" + (&url.URL{Scheme: "file", Path: filepath.ToSlash(profile)}).String(),
		"--headless",
		"--nologo",
		"--nolockcheck",
		"--nodefault",
		"--nofirststartwizard",
		"--convert-to", format,
		"--outdir", outDir,
		src,
	}
	cmd := exec.CommandContext(ctx, s.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// soffice forks soffice.bin, which may hold the output pipes after a kill
	cmd.WaitDelay = 5 * time.Second

	log := s.log.WithFields(logrus.Fields{"source": src, "format": format})
	start := time.Now()
	err = cmd.Run()
	log = log.WithField("elapsed", time.Since(start).Round(time.Millisecond))

	if ctx.Err() == context.DeadlineExceeded {
		log.Warn("Conversion timed out")
		return "", errors.Wrap(errors.ErrorTypeTimeout,
			fmt.Sprintf("A conversão do documento excedeu o tempo limite de %s.", s.Timeout), ctx.Err())
	}
	if err != nil {
		log.WithError(err).WithField("stderr", strings.TrimSpace(stderr.String())).Warn("Conversion failed")
		return "", errors.Wrap(errors.ErrorTypeCollaborator, "Falha na conversão do documento.",
			fmt.Errorf("%s failed: %w, stderr: %s", s.Binary, err, strings.TrimSpace(stderr.String())))
	}

	out := OutputPath(src, outDir, format)
	if _, err := os.Stat(out); err != nil {
		log.WithField("stdout", strings.TrimSpace(stdout.String())).Warn("Converter produced no output")
		return "", errors.Wrap(errors.ErrorTypeCollaborator, "Falha na conversão do documento.", err)
	}

	log.Debug("Document converted")
	return out, nil
}

// OutputPath is where LibreOffice writes the conversion of src: the source
// stem with the target extension, inside outDir. A filter suffix such as
// "docx:MS Word 2007 XML" is ignored.
func OutputPath(src, outDir, format string) string {
	ext, _, _ := strings.Cut(format, ":")
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(outDir, stem+"."+ext)
}
