package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ContractStatus is the lifecycle state of a contract
type ContractStatus string

const (
	StatusDraft             ContractStatus = "draft"
	StatusPendingSignatures ContractStatus = "pending_signatures"
	StatusCompleted         ContractStatus = "completed"
	StatusExpired           ContractStatus = "expired"
	StatusCancelled         ContractStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from the status
func (s ContractStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired || s == StatusCancelled
}

// NotificationType classifies contract lifecycle notifications
type NotificationType string

const (
	NotificationContractCreated   NotificationType = "contract_created"
	NotificationSignatureRequest  NotificationType = "signature_requested"
	NotificationContractSigned    NotificationType = "contract_signed"
	NotificationContractCompleted NotificationType = "contract_completed"
	NotificationContractExpiring  NotificationType = "contract_expiring"
	NotificationVerification      NotificationType = "verification"
	NotificationSystem            NotificationType = "system"
)

// JSONContent holds a freeform JSON document stored in a JSONB column
type JSONContent json.RawMessage

// Value implements driver.Valuer
func (c JSONContent) Value() (driver.Value, error) {
	if len(c) == 0 {
		return []byte("{}"), nil
	}
	return []byte(c), nil
}

// Scan implements sql.Scanner
func (c *JSONContent) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		*c = append((*c)[:0], v...)
		return nil
	case string:
		*c = JSONContent(v)
		return nil
	}
	return errors.New("unsupported type for JSONContent")
}

// MarshalJSON returns the raw document
func (c JSONContent) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}
	return c, nil
}

// UnmarshalJSON stores the raw document
func (c *JSONContent) UnmarshalJSON(data []byte) error {
	*c = append((*c)[:0], data...)
	return nil
}

// TemplateField describes one fillable field of a template
type TemplateField struct {
	Name         string   `json:"name" binding:"required"`
	Label        string   `json:"label" binding:"required"`
	Type         string   `json:"type" binding:"required,oneof=text number date select checkbox textarea signature"`
	Required     bool     `json:"required"`
	Options      []string `json:"options,omitempty"`
	Placeholder  string   `json:"placeholder,omitempty"`
	DefaultValue string   `json:"defaultValue,omitempty"`
}

// FieldList is a JSONB-stored list of template fields
type FieldList []TemplateField

// Value implements driver.Valuer
func (f FieldList) Value() (driver.Value, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner
func (f *FieldList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = nil
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	}
	return errors.New("unsupported type for FieldList")
}

// DigitalIdentity is the demo identity-verification sub-record of a user.
// Stored as flat columns; queries alias them to the dotted paths sqlx
// expects for nested structs (identity.verified etc.).
type DigitalIdentity struct {
	Verified   bool       `db:"verified" json:"verified"`
	IDType     string     `db:"id_type" json:"idType"`
	IDNumber   string     `db:"id_number" json:"idNumber"`
	VerifiedAt *time.Time `db:"verified_at" json:"verifiedAt,omitempty"`
}

// User represents a registered account
type User struct {
	ID              string          `db:"id" json:"id"`
	Email           string          `db:"email" json:"email"`
	Name            string          `db:"name" json:"name"`
	Password        string          `db:"password" json:"-"` // Password hash, not returned in JSON
	PublicKey       string          `db:"public_key" json:"publicKey,omitempty"`
	DigitalIdentity DigitalIdentity `db:"identity" json:"digitalIdentity"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// Template is a reusable contract blueprint
type Template struct {
	ID          string      `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Description string      `db:"description" json:"description"`
	Category    string      `db:"category" json:"category"`
	Content     JSONContent `db:"content" json:"content"`
	Fields      FieldList   `db:"fields" json:"fields"`
	IsPublic    bool        `db:"is_public" json:"isPublic"`
	Creator     string      `db:"creator" json:"creator"`
	UsageCount  int         `db:"usage_count" json:"usageCount"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

// Party is one invited signatory of a contract. UserID is set when the
// party email resolved to a registered account at creation time.
type Party struct {
	ContractID         string     `db:"contract_id" json:"-"`
	Position           int        `db:"position" json:"-"`
	UserID             *string    `db:"user_id" json:"userId,omitempty"`
	Email              string     `db:"email" json:"email"`
	Role               string     `db:"role" json:"role"`
	Signed             bool       `db:"signed" json:"signed"`
	SignatureTimestamp *time.Time `db:"signature_timestamp" json:"signatureTimestamp,omitempty"`
	SignatureHash      string     `db:"signature_hash" json:"signatureHash,omitempty"`
}

// HistoryEntry is one append-only action record on a contract
type HistoryEntry struct {
	ID         string    `db:"id" json:"id"`
	ContractID string    `db:"contract_id" json:"-"`
	Action     string    `db:"action" json:"action"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Details    string    `db:"details" json:"details,omitempty"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
}

// BlockchainRecord is the simulated ledger receipt attached on completion
type BlockchainRecord struct {
	Stored          bool       `db:"stored" json:"stored"`
	TransactionHash string     `db:"tx_hash" json:"transactionHash,omitempty"`
	BlockNumber     int64      `db:"block_number" json:"blockNumber,omitempty"`
	Timestamp       *time.Time `db:"timestamp" json:"timestamp,omitempty"`
	Network         string     `db:"network" json:"network,omitempty"`
}

// Contract is a multi-party agreement instantiated from a template
type Contract struct {
	ID               string           `db:"id" json:"id"`
	Title            string           `db:"title" json:"title"`
	Description      string           `db:"description" json:"description"`
	TemplateID       string           `db:"template_id" json:"templateId"`
	Creator          string           `db:"creator" json:"creator"`
	Content          JSONContent      `db:"content" json:"content"`
	Status           ContractStatus   `db:"status" json:"status"`
	DocumentHash     string           `db:"document_hash" json:"documentHash,omitempty"`
	ExpiryDate       *time.Time       `db:"expiry_date" json:"expiryDate,omitempty"`
	IsPublic         bool             `db:"is_public" json:"isPublic"`
	VerificationCode string           `db:"verification_code" json:"verificationCode"`
	Blockchain       BlockchainRecord `db:"blockchain" json:"blockchainData"`
	Parties          []Party          `json:"parties"`
	History          []HistoryEntry   `json:"history"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
}

// PartyFor returns the party entry matching the given user, either through
// the bound account id or, for unbound parties, by email.
func (c *Contract) PartyFor(userID, email string) *Party {
	for i := range c.Parties {
		p := &c.Parties[i]
		if p.UserID != nil && *p.UserID == userID {
			return p
		}
		if p.UserID == nil && strings.EqualFold(p.Email, email) {
			return p
		}
	}
	return nil
}

// AllSigned is the completeness predicate: every listed party has signed.
func (c *Contract) AllSigned() bool {
	if len(c.Parties) == 0 {
		return false
	}
	for i := range c.Parties {
		if !c.Parties[i].Signed {
			return false
		}
	}
	return true
}

// Expired reports whether the expiry date has passed at the given instant
func (c *Contract) Expired(now time.Time) bool {
	return c.ExpiryDate != nil && now.After(*c.ExpiryDate)
}

// Notification is a per-user lifecycle event record
type Notification struct {
	ID             string           `db:"id" json:"id"`
	Recipient      string           `db:"recipient" json:"recipient"`
	Type           NotificationType `db:"type" json:"type"`
	Title          string           `db:"title" json:"title"`
	Message        string           `db:"message" json:"message"`
	ContractID     *string          `db:"contract_id" json:"contractId,omitempty"`
	Read           bool             `db:"read" json:"read"`
	ActionRequired bool             `db:"action_required" json:"actionRequired"`
	ActionLink     string           `db:"action_link" json:"actionLink,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"createdAt"`
}
