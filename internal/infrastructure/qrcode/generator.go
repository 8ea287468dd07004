// Package qrcode renders entry tokens as PNG artifacts on local disk.
package qrcode

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"

	"custodia/internal/shared/config"
	"custodia/internal/shared/logger"
)

const defaultSize = 256

// Generator writes QR images under {dir}/{category}/{token}.png. The PNG
// encodes the bare token string, which the gate scanner posts back.
type Generator struct {
	dir    string
	size   int
	logger logger.Interface
}

// NewGenerator creates a QR artifact generator rooted at the configured
// directory.
func NewGenerator(cfg *config.QRCodeConfig, logger logger.Interface) *Generator {
	size := cfg.Size
	if size <= 0 {
		size = defaultSize
	}
	return &Generator{dir: cfg.Dir, size: size, logger: logger}
}

// Generate renders the token as a PNG and returns the image file name.
func (g *Generator) Generate(category, token string) (string, error) {
	dir := filepath.Join(g.dir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create QR directory: %w", err)
	}

	name := token + ".png"
	path := filepath.Join(dir, name)
	if err := qrcode.WriteFile(token, qrcode.Medium, g.size, path); err != nil {
		return "", fmt.Errorf("failed to write QR image: %w", err)
	}

	g.logger.Debugw("QR artifact written", "category", category, "token", token)
	return name, nil
}

// Remove deletes the token's PNG. A missing file is not an error.
func (g *Generator) Remove(category, token string) error {
	path := filepath.Join(g.dir, category, token+".png")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove QR image: %w", err)
	}
	return nil
}
