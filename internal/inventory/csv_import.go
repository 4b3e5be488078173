package inventory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

var requiredColumns = []string{"drug_name", "quantity", "price"}

// RowError reports one rejected CSV row. Row is 1-based and excludes the header.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarises a CSV upload.
type ImportResult struct {
	Upserted int        `json:"upserted"`
	Errors   []RowError `json:"errors"`
}

// ImportCSV upserts one drug per row of a
// drug_name,quantity,price[,category,description,dosage_days,dosage_frequency]
// file. Bad rows are collected and skipped; the header itself must be valid.
func ImportCSV(ctx context.Context, svc Service, r io.Reader) (ImportResult, error) {
	result := ImportResult{Errors: []RowError{}}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, pkgerrors.New(pkgerrors.CodeValidation, "csv file is empty")
	}
	if err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv header")
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return result, pkgerrors.New(pkgerrors.CodeValidation, "csv header missing "+required).
				WithDetails(map[string]any{"required": requiredColumns})
		}
	}

	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: row, Message: err.Error()})
			continue
		}

		input, err := parseRow(record, cols)
		if err == nil {
			_, err = svc.Upsert(ctx, input)
		}
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: row, Message: rowMessage(err)})
			continue
		}
		result.Upserted++
	}
	return result, nil
}

func parseRow(record []string, cols map[string]int) (UpsertInput, error) {
	field := func(name, fallback string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return fallback
		}
		if v := strings.TrimSpace(record[idx]); v != "" {
			return v
		}
		return fallback
	}

	qty, err := strconv.Atoi(field("quantity", ""))
	if err != nil {
		return UpsertInput{}, fmt.Errorf("invalid quantity %q", field("quantity", ""))
	}
	price, err := decimal.NewFromString(field("price", ""))
	if err != nil {
		return UpsertInput{}, fmt.Errorf("invalid price %q", field("price", ""))
	}
	days, err := strconv.Atoi(field("dosage_days", "0"))
	if err != nil {
		return UpsertInput{}, fmt.Errorf("invalid dosage_days %q", field("dosage_days", ""))
	}

	return UpsertInput{
		Name:            field("drug_name", ""),
		Quantity:        qty,
		Price:           price,
		Category:        field("category", "general"),
		Description:     field("description", ""),
		CourseDays:      days,
		DosageFrequency: field("dosage_frequency", defaultDosageFrequency),
	}, nil
}

func rowMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
