// Package sepa builds and serializes ISO 20022 pain.008.001.02 customer
// direct-debit initiation documents. The struct layout mirrors the
// schema element names so that encoding/xml produces the wire format
// directly; only the subset of the schema used by the club's collection
// batches is modelled.
package sepa

import "encoding/xml"

// Namespace is the pain.008.001.02 document namespace.
const Namespace = "urn:iso:std:iso:20022:tech:xsd:pain.008.001.02"

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// Document is the root element of a payment initiation message.
type Document struct {
	XMLName           xml.Name `xml:"Document"`
	Xmlns             string   `xml:"xmlns,attr"`
	XmlnsXsi          string   `xml:"xmlns:xsi,attr,omitempty"`
	SchemaLocation    string   `xml:"xsi:schemaLocation,attr,omitempty"`
	CstmrDrctDbtInitn CustomerDirectDebitInitiation
}

// CustomerDirectDebitInitiation holds one group header and one payment
// instruction block per generated tally.
type CustomerDirectDebitInitiation struct {
	XMLName xml.Name             `xml:"CstmrDrctDbtInitn"`
	GrpHdr  GroupHeader          `xml:"GrpHdr"`
	PmtInf  []PaymentInstruction `xml:"PmtInf"`
}

// GroupHeader carries message id, creation time, transaction count,
// control sum and the initiating party.
type GroupHeader struct {
	MsgID    string `xml:"MsgId"`
	CreDtTm  string `xml:"CreDtTm"`
	NbOfTxs  string `xml:"NbOfTxs"`
	CtrlSum  string `xml:"CtrlSum"`
	InitgPty Party  `xml:"InitgPty"`
}

// Party identifies a party either by display name or by a scheme id.
type Party struct {
	Nm string   `xml:"Nm,omitempty"`
	ID *PartyID `xml:"Id,omitempty"`
}

// PartyID wraps a private person identification.
type PartyID struct {
	PrvtID PrivateID `xml:"PrvtId"`
}

// PrivateID holds generic person identifications, e.g. the SEPA
// creditor identifier.
type PrivateID struct {
	Othr []GenericPersonID `xml:"Othr"`
}

// GenericPersonID is an identification value plus its scheme name.
type GenericPersonID struct {
	ID      string     `xml:"Id"`
	SchmeNm SchemeName `xml:"SchmeNm"`
}

// SchemeName names the identification scheme, proprietary form.
type SchemeName struct {
	Prtry string `xml:"Prtry"`
}

// PaymentInstruction is one direct-debit payment information block.
type PaymentInstruction struct {
	PmtInfID     string          `xml:"PmtInfId"`
	PmtMtd       string          `xml:"PmtMtd"`
	BtchBookg    bool            `xml:"BtchBookg"`
	NbOfTxs      string          `xml:"NbOfTxs"`
	CtrlSum      string          `xml:"CtrlSum"`
	PmtTpInf     PaymentTypeInfo `xml:"PmtTpInf"`
	ReqdColltnDt string          `xml:"ReqdColltnDt"`
	Cdtr         Party           `xml:"Cdtr"`
	CdtrAcct     Account         `xml:"CdtrAcct"`
	CdtrAgt      Agent           `xml:"CdtrAgt"`
	ChrgBr       string          `xml:"ChrgBr"`
	CdtrSchmeID  Party           `xml:"CdtrSchmeId"`
	DrctDbtTxInf []Transaction   `xml:"DrctDbtTxInf"`
}

// PaymentTypeInfo selects service level, local instrument and sequence
// type of the collection.
type PaymentTypeInfo struct {
	SvcLvl    Code   `xml:"SvcLvl"`
	LclInstrm Code   `xml:"LclInstrm"`
	SeqTp     string `xml:"SeqTp"`
}

// Code is a single coded value.
type Code struct {
	Cd string `xml:"Cd"`
}

// Account references a cash account by IBAN.
type Account struct {
	ID AccountID `xml:"Id"`
}

// AccountID holds the IBAN of an account.
type AccountID struct {
	IBAN string `xml:"IBAN"`
}

// Agent references a financial institution.
type Agent struct {
	FinInstnID FinInstitution `xml:"FinInstnId"`
}

// FinInstitution identifies a bank either by BIC or by a generic
// "other" identification (NOTPROVIDED for debtor agents).
type FinInstitution struct {
	BIC  string     `xml:"BIC,omitempty"`
	Othr *GenericID `xml:"Othr,omitempty"`
}

// GenericID is a bare identification value.
type GenericID struct {
	ID string `xml:"Id"`
}

// Transaction is a single direct-debit leg against one debtor.
type Transaction struct {
	PmtID     PaymentID     `xml:"PmtId"`
	InstdAmt  Amount        `xml:"InstdAmt"`
	DrctDbtTx DirectDebitTx `xml:"DrctDbtTx"`
	DbtrAgt   Agent         `xml:"DbtrAgt"`
	Dbtr      Party         `xml:"Dbtr"`
	DbtrAcct  Account       `xml:"DbtrAcct"`
	UltmtDbtr *Party        `xml:"UltmtDbtr,omitempty"`
	RmtInf    *Remittance   `xml:"RmtInf,omitempty"`
}

// PaymentID carries the end-to-end id of a transaction.
type PaymentID struct {
	EndToEndID string `xml:"EndToEndId"`
}

// Amount is an instructed amount with its currency attribute. The value
// is pre-formatted to two decimal places.
type Amount struct {
	Ccy   string `xml:"Ccy,attr"`
	Value string `xml:",chardata"`
}

// DirectDebitTx wraps the mandate related information.
type DirectDebitTx struct {
	MndtRltdInf MandateInfo `xml:"MndtRltdInf"`
}

// MandateInfo carries mandate id, signature date and amendment flag.
type MandateInfo struct {
	MndtID    string `xml:"MndtId"`
	DtOfSgntr string `xml:"DtOfSgntr"`
	AmdmntInd bool   `xml:"AmdmntInd"`
}

// Remittance carries the unstructured purpose lines.
type Remittance struct {
	Ustrd []string `xml:"Ustrd"`
}
