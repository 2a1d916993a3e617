package model

import (
	"math"
	"slices"

	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

var requiredDocuments = map[types.ProgramType][]types.DocumentType{
	types.ProgramOIC: {
		types.DocumentTypeTaxReturn,
		types.DocumentTypeIRSTranscript,
		types.DocumentTypeProofOfIncome,
		types.DocumentTypeBankStatement,
		types.DocumentTypeForm433A,
		types.DocumentTypeForm656,
	},
	types.ProgramIA: {
		types.DocumentTypeTaxReturn,
		types.DocumentTypeIRSTranscript,
		types.DocumentTypeProofOfIncome,
		types.DocumentTypeForm9465,
	},
	types.ProgramCNC: {
		types.DocumentTypeTaxReturn,
		types.DocumentTypeIRSTranscript,
		types.DocumentTypeProofOfIncome,
		types.DocumentTypeBankStatement,
		types.DocumentTypeExpenseReceipt,
		types.DocumentTypeForm433F,
	},
	types.ProgramPA: {
		types.DocumentTypeTaxReturn,
		types.DocumentTypeIRSNotice,
		types.DocumentTypeForm843,
	},
	types.ProgramISR: {
		types.DocumentTypeTaxReturn,
		types.DocumentTypeMarriageCertificate,
		types.DocumentTypeForm8857,
	},
}

// RequiredDocuments returns the ordered document types a program requires.
// Programs without a fixed list require nothing. The result is a fresh slice.
func RequiredDocuments(program types.ProgramType) []types.DocumentType {
	required := requiredDocuments[program]
	if required == nil {
		return []types.DocumentType{}
	}
	return slices.Clone(required)
}

// RequirementCheck is the document completeness of a case
type RequirementCheck struct {
	CaseID   CaseID
	Program  types.ProgramType
	Required []types.DocumentType
	Present  []types.DocumentType
	Missing  []types.DocumentType
	Complete bool
	Progress int
}

// CheckRequirements compares the documents of a case with the program's
// requirement list. Only processed or verified documents count.
func CheckRequirements(caseID CaseID, program types.ProgramType, docs []*Document) *RequirementCheck {
	required := RequiredDocuments(program)

	have := make(map[types.DocumentType]bool)
	for _, d := range docs {
		if d != nil && d.Status.CountsTowardRequirements() {
			have[d.Type] = true
		}
	}

	result := &RequirementCheck{
		CaseID:   caseID,
		Program:  program,
		Required: required,
		Present:  []types.DocumentType{},
		Missing:  []types.DocumentType{},
	}
	for _, t := range required {
		if have[t] {
			result.Present = append(result.Present, t)
		} else {
			result.Missing = append(result.Missing, t)
		}
	}

	result.Complete = len(result.Missing) == 0
	if len(required) == 0 {
		result.Progress = 100
	} else {
		result.Progress = int(math.Round(100 * float64(len(result.Present)) / float64(len(required))))
	}
	return result
}
