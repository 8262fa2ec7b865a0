//go:build tesseract

package cli

import _ "github.com/taj0207/IngredientCheck/internal/infra/ocr/tesseract"
