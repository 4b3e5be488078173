package chat

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	inventoryPrefixes = []string{"add drug", "update drug", "add inventory"}
	analyticsCommands = []string{"analytics", "show analytics", "predictive insights", "insights"}
	inventoryCommands = []string{"inventory report", "show inventory", "stock report", "inventory analysis"}
	weeklyCommands    = []string{"weekly report", "week report", "weekly summary"}
)

// adminCommand answers admin-only commands. ok is false when the message is
// not one, so it flows through the customer path.
func (s *service) adminCommand(ctx context.Context, lower, raw string) (string, bool, error) {
	switch {
	case hasAnyPrefix(lower, inventoryPrefixes...):
		reply, err := s.adminInventory(ctx, raw)
		return reply, true, err
	case oneOf(lower, analyticsCommands...):
		report, err := s.reports.Analytics(ctx)
		if err != nil {
			return "", true, err
		}
		return report.Render(), true, nil
	case oneOf(lower, inventoryCommands...):
		report, err := s.reports.Inventory(ctx)
		if err != nil {
			return "", true, err
		}
		return report.Render(), true, nil
	case oneOf(lower, weeklyCommands...):
		report, err := s.reports.Weekly(ctx)
		if err != nil {
			return "", true, err
		}
		return report.Render(), true, nil
	case lower == "help":
		return adminHelp, true, nil
	}
	return "", false, nil
}

// adminInventory handles "add drug <name> <qty> <price> [category...]". Course
// data and description of an existing drug are kept.
func (s *service) adminInventory(ctx context.Context, raw string) (string, error) {
	in, err := parseInventoryCommand(raw)
	if err != nil {
		return inventoryUsage, nil
	}

	existing, err := s.inventory.Lookup(ctx, in.Name)
	switch {
	case err == nil:
		in.Description = existing.Description
		in.CourseDays = existing.CourseDays
		in.DosageFrequency = existing.DosageFrequency
	case !pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return "", err
	}

	drug, err := s.inventory.Upsert(ctx, in)
	if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		return inventoryUsage, nil
	}
	if err != nil {
		return "", err
	}
	return inventoryUpdatedText(drug), nil
}

var errMalformedCommand = errors.New("malformed inventory command")

func parseInventoryCommand(raw string) (inventory.UpsertInput, error) {
	parts := strings.Fields(strings.ToLower(raw))
	if len(parts) < 5 {
		return inventory.UpsertInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, errMalformedCommand, "expected name, quantity and price")
	}
	qty, err := strconv.Atoi(parts[3])
	if err != nil {
		return inventory.UpsertInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quantity must be a whole number")
	}
	price, err := decimal.NewFromString(parts[4])
	if err != nil {
		return inventory.UpsertInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a number")
	}
	category := "general"
	if len(parts) > 5 {
		category = strings.Join(parts[5:], " ")
	}
	return inventory.UpsertInput{Name: parts[2], Quantity: qty, Price: price, Category: category}, nil
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
