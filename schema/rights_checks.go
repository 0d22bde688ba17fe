package schema

import (
	"iptrade/model"
)

// CheckRights validates the seller's standing over every object of the
// deal conditions. Each object needs either unstructured ownership data
// (which degrades both the structure and the term verdicts to
// indeterminate) or a structured Rights record, whose term coverage is
// verified against the requested term. An object with neither fails the
// transaction outright. The two verdicts aggregate across objects as the
// running minimum.
func (s *Schema) CheckRights(conditions model.Conditions, seller model.MemberIdentity) ([]model.Check, error) {
	termFold := model.StartWorstOf(model.CheckDurationValid)
	structFold := model.StartWorstOf(model.CheckNoUnstructuredData)
	sellerID := seller.ID()

	for _, term := range conditions.Objects {
		objectID := term.Object.ID()
		exists, err := s.HasObject(objectID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, model.ErrNoObject(term.Object.String())
		}

		unstructured, err := s.UnstructuredOwnership(objectID)
		if err != nil {
			return nil, err
		}
		if len(unstructured) > 0 {
			structFold = structFold.Fold(model.VerdictUnknown)
			termFold = termFold.Fold(model.VerdictUnknown)
			continue
		}

		rights, err := s.RightsOf(objectID, sellerID)
		if err != nil {
			return nil, err
		}
		if rights == nil {
			return nil, model.ErrNoPermissions()
		}
		structFold = structFold.Fold(model.VerdictOk)

		verdict, err := rights.CheckTerm(term.Object, term.Term)
		if err != nil {
			return nil, err
		}
		termFold = termFold.Fold(verdict)
	}

	return []model.Check{structFold.Finalize(), termFold.Finalize()}, nil
}
