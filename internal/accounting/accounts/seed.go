package accounts

import (
	"context"
	"errors"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
)

type seedAccount struct {
	Number string
	Name   string
	Type   AccountType
}

// defaultChart is the minimal PCG chart installed for a new organization.
// All seeded accounts are system accounts and cannot be deleted.
var defaultChart = []seedAccount{
	{"101", "Capital", AccountTypeEquity},
	{"106", "Réserves", AccountTypeEquity},
	{"120", "Résultat de l'exercice", AccountTypeEquity},
	{"164", "Emprunts auprès des établissements de crédit", AccountTypeLiability},
	{"215", "Installations techniques, matériel et outillage", AccountTypeAsset},
	{"218", "Autres immobilisations corporelles", AccountTypeAsset},
	{"370", "Stocks de marchandises", AccountTypeAsset},
	{"401", "Fournisseurs", AccountTypeLiability},
	{"411", "Clients", AccountTypeAsset},
	{"421", "Personnel - rémunérations dues", AccountTypeLiability},
	{"431", "Sécurité sociale", AccountTypeLiability},
	{"44566", "TVA déductible sur autres biens et services", AccountTypeAsset},
	{"44571", "TVA collectée", AccountTypeLiability},
	{"512", "Banque", AccountTypeAsset},
	{"530", "Caisse", AccountTypeAsset},
	{"601", "Achats de matières premières", AccountTypeExpense},
	{"607", "Achats de marchandises", AccountTypeExpense},
	{"613", "Locations", AccountTypeExpense},
	{"622", "Rémunérations d'intermédiaires et honoraires", AccountTypeExpense},
	{"626", "Frais postaux et télécommunications", AccountTypeExpense},
	{"631", "Impôts, taxes et versements assimilés", AccountTypeExpense},
	{"641", "Rémunérations du personnel", AccountTypeExpense},
	{"661", "Charges d'intérêts", AccountTypeExpense},
	{"701", "Ventes de produits finis", AccountTypeIncome},
	{"706", "Prestations de services", AccountTypeIncome},
	{"707", "Ventes de marchandises", AccountTypeIncome},
	{"708", "Produits des activités annexes", AccountTypeIncome},
}

// SeedDefaults installs the default chart for an organization. Accounts that
// already exist are left untouched.
func (s *Service) SeedDefaults(ctx context.Context, orgID, actorID int64) error {
	for _, seed := range defaultChart {
		_, err := s.Create(ctx, actorID, CreateAccountInput{
			OrgID:    orgID,
			Number:   seed.Number,
			Name:     seed.Name,
			Type:     seed.Type,
			IsSystem: true,
		})
		if err != nil && !errors.Is(err, shared.ErrDuplicateAccountNumber) {
			return err
		}
	}
	return nil
}
