package inventory

import "github.com/shopspring/decimal"

// DefaultCatalogue is the starter stock loaded into an empty ledger.
func DefaultCatalogue() []UpsertInput {
	return []UpsertInput{
		{Name: "paracetamol", Quantity: 150, Price: decimal.NewFromInt(500), Category: "fever/pain", Description: "For fever and pain relief", CourseDays: 3, DosageFrequency: "3 times daily"},
		{Name: "amoxicillin", Quantity: 80, Price: decimal.NewFromInt(1200), Category: "antibiotic", Description: "Bacterial infection treatment", CourseDays: 7, DosageFrequency: "2 times daily"},
		{Name: "chloroquine", Quantity: 60, Price: decimal.NewFromInt(800), Category: "malaria", Description: "Malaria treatment", CourseDays: 3, DosageFrequency: "Once daily"},
		{Name: "artemether", Quantity: 45, Price: decimal.NewFromInt(1800), Category: "malaria", Description: "Severe malaria treatment", CourseDays: 3, DosageFrequency: "Twice daily"},
		{Name: "coartem", Quantity: 70, Price: decimal.NewFromInt(2000), Category: "malaria", Description: "Combination antimalarial", CourseDays: 3, DosageFrequency: "Twice daily"},
		{Name: "vitamin c", Quantity: 200, Price: decimal.NewFromInt(300), Category: "supplement", Description: "Immune system booster", CourseDays: 30, DosageFrequency: "Once daily"},
		{Name: "ibuprofen", Quantity: 120, Price: decimal.NewFromInt(600), Category: "pain", Description: "Anti-inflammatory", CourseDays: 5, DosageFrequency: "3 times daily"},
		{Name: "cough syrup", Quantity: 45, Price: decimal.NewFromInt(1500), Category: "cold/flu", Description: "Cough relief", CourseDays: 5, DosageFrequency: "3 times daily"},
	}
}
