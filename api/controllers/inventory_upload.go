package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ejidepharmacy/pharmabot-backend/api/responses"
	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
)

const (
	maxUploadBytes   = 5 << 20
	uploadFormField  = "file"
	shownUploadError = 5
)

type inventoryUploadResponse struct {
	Reply  string                 `json:"reply"`
	Result inventory.ImportResult `json:"result"`
}

// InventoryUpload upserts drugs from a multipart CSV file.
func InventoryUpload(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "upload must be a multipart form under 5MB"))
			return
		}
		file, header, err := r.FormFile(uploadFormField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required"))
			return
		}
		defer file.Close()

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file must be a .csv"))
			return
		}

		result, err := inventory.ImportCSV(r.Context(), svc, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"file":     header.Filename,
				"upserted": result.Upserted,
				"errors":   len(result.Errors),
			})
			logg.Info(ctx, "inventory.csv_uploaded")
		}

		responses.WriteSuccess(w, inventoryUploadResponse{Reply: uploadReply(result), Result: result})
	}
}

func uploadReply(result inventory.ImportResult) string {
	var b strings.Builder
	b.WriteString("✅ *CSV Upload Complete!*\n\n")
	fmt.Fprintf(&b, "✓ Added/Updated: %d items\n", result.Upserted)
	if len(result.Errors) == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "\n⚠️ Errors (%d):\n", len(result.Errors))
	for i, rowErr := range result.Errors {
		if i == shownUploadError {
			break
		}
		fmt.Fprintf(&b, "• Row %d: %s\n", rowErr.Row, rowErr.Message)
	}
	return b.String()
}
