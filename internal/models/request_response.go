package models

import "time"

// Request models
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Password  string `json:"password" binding:"omitempty,min=8"`
	PublicKey string `json:"publicKey"`
}

type UpdateIdentityRequest struct {
	IDType   string `json:"idType" binding:"required,oneof=government_id passport drivers_license other"`
	IDNumber string `json:"idNumber" binding:"required"`
}

type CreateTemplateRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Category    string          `json:"category" binding:"required,oneof=property_deed will marriage_license business_agreement employment_contract other"`
	Content     JSONContent     `json:"content" binding:"required"`
	Fields      []TemplateField `json:"fields" binding:"dive"`
	IsPublic    *bool           `json:"isPublic"`
}

type UpdateTemplateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category" binding:"omitempty,oneof=property_deed will marriage_license business_agreement employment_contract other"`
	Content     JSONContent     `json:"content"`
	Fields      []TemplateField `json:"fields" binding:"omitempty,dive"`
	IsPublic    *bool           `json:"isPublic"`
}

type PartyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

type CreateContractRequest struct {
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	TemplateID  string         `json:"templateId" binding:"required"`
	Content     JSONContent    `json:"content" binding:"required"`
	Parties     []PartyRequest `json:"parties" binding:"required,min=1,dive"`
	ExpiryDate  *time.Time     `json:"expiryDate"`
	IsPublic    bool           `json:"isPublic"`
}

type UpdateContractRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Content     JSONContent `json:"content"`
	ExpiryDate  *time.Time  `json:"expiryDate"`
	IsPublic    *bool       `json:"isPublic"`
}

type SignContractRequest struct {
	SignatureHash string `json:"signatureHash" binding:"required"`
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// VerificationParty is the reduced per-party view exposed publicly
type VerificationParty struct {
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	Signed             bool       `json:"signed"`
	SignatureTimestamp *time.Time `json:"signatureTimestamp,omitempty"`
}

// VerificationResponse is the public, non-sensitive verification view
type VerificationResponse struct {
	Status           ContractStatus      `json:"status"`
	Title            string              `json:"title"`
	CreatedAt        time.Time           `json:"createdAt"`
	CreatorName      string              `json:"creatorName"`
	TemplateName     string              `json:"templateName,omitempty"`
	TemplateCategory string              `json:"templateCategory,omitempty"`
	Parties          []VerificationParty `json:"parties"`
	DocumentHash     string              `json:"documentHash,omitempty"`
	Blockchain       BlockchainRecord    `json:"blockchainData"`
	IsVerified       bool                `json:"isVerified"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
