package sepa

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clubkasse/membership-tally/internal/models"
)

// Fixed values of the CORE recurring direct-debit scheme used for the
// club's collections.
const (
	currency        = "EUR"
	serviceLevel    = "SEPA"
	localInstrument = "CORE"
	sequenceType    = "RCUR"
	paymentMethod   = "DD"
	chargeBearer    = "SLEV"
	schemeName      = "SEPA"
	agentNotGiven   = "NOTPROVIDED"
)

// memberIDPlaceholder is substituted with the debtor's numeric member id
// when expanding the configured end-to-end id template.
const memberIDPlaceholder = "{mem_id}"

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// MessageID derives the message id of a tally from its creation
// timestamp: date plus hour, minute and second. Two batches generated in
// different seconds always get distinct ids.
func MessageID(createdAt time.Time) string {
	return fmt.Sprintf("Tally-%s-%02d-%02d-%02d",
		createdAt.Format(dateLayout), createdAt.Hour(), createdAt.Minute(), createdAt.Second())
}

// Transactions converts assets into direct-debit transactions and
// returns them with their exact control sum. Zero-amount assets are
// skipped; a negative amount is rejected as corrupt input. Every
// debtor must carry a complete mandate.
func Transactions(assets []models.Asset) (decimal.Decimal, []Transaction, error) {
	const op = "sepa.Transactions"

	transactions := make([]Transaction, 0, len(assets))
	total := decimal.Zero

	for _, asset := range assets {
		if asset.Amount.IsNegative() {
			return decimal.Zero, nil, fmt.Errorf("%s: negative amount %s for member %d",
				op, asset.Amount, asset.Debitor.ID)
		}
		if asset.Amount.IsZero() {
			continue
		}
		if asset.Debitor.SepaMandateDate == nil {
			return decimal.Zero, nil, fmt.Errorf("%s: member %d has no mandate signature date",
				op, asset.Debitor.ID)
		}

		total = total.Add(asset.Amount)

		accountOwner := asset.Debitor.AccountOwner
		if accountOwner == "" {
			accountOwner = asset.Debitor.FirstName + " " + asset.Debitor.LastName
		}

		transactions = append(transactions, Transaction{
			PmtID: PaymentID{
				EndToEndID: ExpandE2EID(asset.E2EID, asset.Debitor.ID),
			},
			InstdAmt: Amount{
				Ccy:   currency,
				Value: asset.Amount.StringFixed(2),
			},
			DrctDbtTx: DirectDebitTx{
				MndtRltdInf: MandateInfo{
					// The member id doubles as the mandate id.
					MndtID:    strconv.FormatInt(asset.Debitor.ID, 10),
					DtOfSgntr: asset.Debitor.SepaMandateDate.Format(dateLayout),
					AmdmntInd: false,
				},
			},
			DbtrAgt: Agent{
				FinInstnID: FinInstitution{Othr: &GenericID{ID: agentNotGiven}},
			},
			Dbtr:      Party{Nm: Sanitize(accountOwner)},
			DbtrAcct:  Account{ID: AccountID{IBAN: asset.Debitor.IBAN}},
			UltmtDbtr: &Party{Nm: Sanitize(asset.Debitor.DisplayName())},
			RmtInf:    &Remittance{Ustrd: []string{asset.Purpose}},
		})
	}

	return total, transactions, nil
}

// ExpandE2EID substitutes the member id into the configured end-to-end
// id template.
func ExpandE2EID(template string, memberID int64) string {
	return strings.ReplaceAll(template, memberIDPlaceholder, strconv.FormatInt(memberID, 10))
}

// Build assembles the complete payment initiation document for the
// given assets and returns it together with its control sum. The
// serialized output is stable for identical input except for the
// embedded message id and creation timestamp.
func Build(msgID string, createdAt time.Time, creditor models.CreditorInfo,
	collectionDate time.Time, assets []models.Asset) (*Document, decimal.Decimal, error) {
	const op = "sepa.Build"

	total, transactions, err := Transactions(assets)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	count := strconv.Itoa(len(transactions))
	controlSum := total.StringFixed(2)

	doc := &Document{
		Xmlns:          Namespace,
		XmlnsXsi:       xsiNamespace,
		SchemaLocation: Namespace + " pain.008.001.02.xsd",
		CstmrDrctDbtInitn: CustomerDirectDebitInitiation{
			GrpHdr: GroupHeader{
				MsgID:    msgID,
				CreDtTm:  createdAt.Format(dateTimeLayout),
				NbOfTxs:  count,
				CtrlSum:  controlSum,
				InitgPty: Party{Nm: Sanitize(creditor.Name)},
			},
			PmtInf: []PaymentInstruction{
				{
					PmtInfID:  msgID,
					PmtMtd:    paymentMethod,
					BtchBookg: true,
					NbOfTxs:   count,
					CtrlSum:   controlSum,
					PmtTpInf: PaymentTypeInfo{
						SvcLvl:    Code{Cd: serviceLevel},
						LclInstrm: Code{Cd: localInstrument},
						SeqTp:     sequenceType,
					},
					ReqdColltnDt: collectionDate.Format(dateLayout),
					Cdtr:         Party{Nm: Sanitize(creditor.Name)},
					CdtrAcct:     Account{ID: AccountID{IBAN: creditor.IBAN}},
					CdtrAgt:      Agent{FinInstnID: FinInstitution{BIC: creditor.BIC}},
					ChrgBr:       chargeBearer,
					CdtrSchmeID: Party{
						ID: &PartyID{
							PrvtID: PrivateID{
								Othr: []GenericPersonID{
									{
										ID:      creditor.Identification,
										SchmeNm: SchemeName{Prtry: schemeName},
									},
								},
							},
						},
					},
					DrctDbtTxInf: transactions,
				},
			},
		},
	}

	return doc, total, nil
}
