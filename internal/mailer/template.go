package mailer

import (
	"strings"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/dto"
)

// Template placeholders substituted per recipient before each bulk send.
// Fund-call (appel de fond) templates use all six; other templates use
// whatever subset they need. Unknown placeholders are left in place.
const (
	PlaceholderNom          = "{NOM}"
	PlaceholderPrenom       = "{PRENOM}"
	PlaceholderMontant      = "{MONTANT}"
	PlaceholderDateEmission = "{DATE_EMISSION}"
	PlaceholderDateEcheance = "{DATE_ECHEANCE}"
	PlaceholderLotNom       = "{LOT_NOM}"
)

// Personalize substitutes the recipient's values into the template. The
// substitution is textual: placeholders for which the recipient carries no
// value are replaced by the empty string.
func Personalize(template string, recipient dto.BulkRecipient) string {
	replacer := strings.NewReplacer(
		PlaceholderNom, recipient.Nom,
		PlaceholderPrenom, recipient.Prenom,
		PlaceholderMontant, recipient.Montant,
		PlaceholderDateEmission, recipient.DateEmission,
		PlaceholderDateEcheance, recipient.DateEcheance,
		PlaceholderLotNom, recipient.LotNom,
	)
	return replacer.Replace(template)
}
