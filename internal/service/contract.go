package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/covenantlabs/covenant-server/internal/apperrors"
	"github.com/covenantlabs/covenant-server/internal/dochash"
	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/google/uuid"
)

// Contract methods

// CreateContract instantiates a contract from a template and invites the
// listed parties. Party emails that belong to registered accounts are
// bound to those accounts up front; matching at signing time never guesses.
func (s *DefaultService) CreateContract(ctx context.Context, userID string, req models.CreateContractRequest) (*models.Contract, error) {
	template, err := s.repo.GetTemplate(ctx, req.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("error getting template: %w", err)
	}

	if template == nil {
		return nil, fmt.Errorf("template not found: %w", apperrors.ErrNotFound)
	}

	creator, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	parties := make([]models.Party, 0, len(req.Parties))
	seen := make(map[string]bool, len(req.Parties))
	for _, p := range req.Parties {
		email := strings.ToLower(p.Email)
		if seen[email] {
			return nil, fmt.Errorf("duplicate party email %q: %w", email, apperrors.ErrValidation)
		}
		seen[email] = true

		party := models.Party{
			Email: email,
			Role:  p.Role,
		}

		account, err := s.repo.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("error resolving party %q: %w", email, err)
		}
		if account != nil {
			id := account.ID
			party.UserID = &id
		}

		parties = append(parties, party)
	}

	contract := &models.Contract{
		ID:               uuid.New().String(),
		Title:            req.Title,
		Description:      req.Description,
		TemplateID:       template.ID,
		Creator:          creator.ID,
		Content:          req.Content,
		Status:           models.StatusPendingSignatures,
		ExpiryDate:       req.ExpiryDate,
		IsPublic:         req.IsPublic,
		VerificationCode: dochash.NewVerificationCode(),
		Parties:          parties,
		History: []models.HistoryEntry{
			{
				Action:    "created",
				UserID:    &creator.ID,
				Details:   fmt.Sprintf("contract created from template %q", template.Name),
				Timestamp: time.Now().UTC(),
			},
		},
	}

	if err := s.repo.CreateContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("error creating contract: %w", err)
	}

	// Invite every party with a registered account, except the creator
	for i := range contract.Parties {
		p := &contract.Parties[i]
		if p.UserID == nil || *p.UserID == creator.ID {
			continue
		}
		s.notify(ctx, &models.Notification{
			Recipient:      *p.UserID,
			Type:           models.NotificationSignatureRequest,
			Title:          "Signature requested",
			Message:        fmt.Sprintf("%s invited you to sign %q", creator.Name, contract.Title),
			ContractID:     &contract.ID,
			ActionRequired: true,
			ActionLink:     "/contracts/" + contract.ID,
		})
	}

	return contract, nil
}

func (s *DefaultService) ListContracts(ctx context.Context, userID string) ([]models.Contract, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	contracts, err := s.repo.GetUserContracts(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("error listing contracts: %w", err)
	}

	return contracts, nil
}

func (s *DefaultService) GetContract(ctx context.Context, userID, contractID string) (*models.Contract, error) {
	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("error getting contract: %w", err)
	}

	if contract == nil {
		return nil, fmt.Errorf("contract not found: %w", apperrors.ErrNotFound)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if contract.Creator != user.ID && contract.PartyFor(user.ID, user.Email) == nil {
		return nil, fmt.Errorf("not authorized to view this contract: %w", apperrors.ErrForbidden)
	}

	return contract, nil
}

// UpdateContract mutates a contract that has not yet collected signatures.
// Only the creator may update, and only in draft or pending state.
func (s *DefaultService) UpdateContract(ctx context.Context, userID, contractID string, req models.UpdateContractRequest) (*models.Contract, error) {
	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("error getting contract: %w", err)
	}

	if contract == nil {
		return nil, fmt.Errorf("contract not found: %w", apperrors.ErrNotFound)
	}

	if contract.Creator != userID {
		return nil, fmt.Errorf("not authorized to update this contract: %w", apperrors.ErrForbidden)
	}

	if contract.Status != models.StatusDraft && contract.Status != models.StatusPendingSignatures {
		return nil, fmt.Errorf("cannot update a contract in status %q: %w", contract.Status, apperrors.ErrInvalidState)
	}

	if req.Title != "" {
		contract.Title = req.Title
	}
	if req.Description != "" {
		contract.Description = req.Description
	}
	if len(req.Content) > 0 {
		contract.Content = req.Content
	}
	if req.ExpiryDate != nil {
		contract.ExpiryDate = req.ExpiryDate
	}
	if req.IsPublic != nil {
		contract.IsPublic = *req.IsPublic
	}

	entry := &models.HistoryEntry{
		Action:    "updated",
		UserID:    &userID,
		Timestamp: time.Now().UTC(),
	}

	if err := s.repo.UpdateContract(ctx, contract, entry); err != nil {
		return nil, fmt.Errorf("error updating contract: %w", err)
	}

	return s.repo.GetContract(ctx, contractID)
}

func (s *DefaultService) DeleteContract(ctx context.Context, userID, contractID string) error {
	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return fmt.Errorf("error getting contract: %w", err)
	}

	if contract == nil {
		return fmt.Errorf("contract not found: %w", apperrors.ErrNotFound)
	}

	if contract.Creator != userID {
		return fmt.Errorf("not authorized to delete this contract: %w", apperrors.ErrForbidden)
	}

	// Signed and terminal contracts are immutable records
	if contract.Status != models.StatusDraft && contract.Status != models.StatusPendingSignatures {
		return fmt.Errorf("cannot delete a contract in status %q: %w", contract.Status, apperrors.ErrInvalidState)
	}

	if err := s.repo.DeleteContract(ctx, contractID); err != nil {
		return fmt.Errorf("error deleting contract: %w", err)
	}

	return nil
}

// SignContract applies one party's signature and finalizes the contract
// once every party has signed. The ledger write on completion fails open:
// a completed contract without a stored record is still completed.
func (s *DefaultService) SignContract(ctx context.Context, userID, contractID string, req models.SignContractRequest) (*models.Contract, error) {
	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("error getting contract: %w", err)
	}

	if contract == nil {
		return nil, fmt.Errorf("contract not found: %w", apperrors.ErrNotFound)
	}

	now := time.Now().UTC()

	if contract.Status == models.StatusPendingSignatures && contract.Expired(now) {
		if err := s.repo.ExpireContract(ctx, contractID, now); err != nil {
			return nil, fmt.Errorf("error expiring contract: %w", err)
		}
		return nil, fmt.Errorf("contract has expired: %w", apperrors.ErrInvalidState)
	}

	if contract.Status != models.StatusPendingSignatures {
		return nil, fmt.Errorf("contract is not awaiting signatures: %w", apperrors.ErrInvalidState)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	party := contract.PartyFor(user.ID, user.Email)
	if party == nil {
		return nil, fmt.Errorf("not a signing party of this contract: %w", apperrors.ErrForbidden)
	}

	if party.Signed {
		return nil, fmt.Errorf("already signed this contract: %w", apperrors.ErrConflict)
	}

	party.SignatureTimestamp = &now
	party.SignatureHash = req.SignatureHash

	entry := &models.HistoryEntry{
		Action:    "signed",
		UserID:    &user.ID,
		Details:   fmt.Sprintf("signed by %s (%s)", user.Name, party.Role),
		Timestamp: now,
	}

	// The repository rejects a second signature for the same party, so a
	// racing duplicate surfaces as a conflict here
	if err := s.repo.MarkPartySigned(ctx, party, entry); err != nil {
		return nil, err
	}

	unsigned, err := s.repo.CountUnsignedParties(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("error checking completeness: %w", err)
	}

	if unsigned == 0 {
		if err := s.finalize(ctx, contract, user); err != nil {
			return nil, err
		}
	} else if contract.Creator != user.ID {
		s.notify(ctx, &models.Notification{
			Recipient:  contract.Creator,
			Type:       models.NotificationContractSigned,
			Title:      "Contract signed",
			Message:    fmt.Sprintf("%s signed %q", user.Name, contract.Title),
			ContractID: &contract.ID,
			ActionLink: "/contracts/" + contract.ID,
		})
	}

	return s.repo.GetContract(ctx, contractID)
}

// finalize computes the document hash, anchors it on the ledger and
// transitions the contract to completed. Ledger errors are logged and
// swallowed so the completion transition still happens.
func (s *DefaultService) finalize(ctx context.Context, contract *models.Contract, lastSigner *models.User) error {
	hash, err := dochash.HashContent(contract.Content)
	if err != nil {
		return fmt.Errorf("error hashing contract content: %w", err)
	}
	contract.DocumentHash = hash

	record, err := s.ledger.Store(ctx, hash)
	if err != nil {
		s.logger.Error("ledger store failed for contract %s: %v", contract.ID, err)
		contract.Blockchain = models.BlockchainRecord{Stored: false}
	} else {
		contract.Blockchain = models.BlockchainRecord{
			Stored:          true,
			TransactionHash: record.TransactionHash,
			BlockNumber:     record.BlockNumber,
			Timestamp:       &record.Timestamp,
			Network:         record.Network,
		}
	}

	entry := &models.HistoryEntry{
		Action:    "completed",
		UserID:    &lastSigner.ID,
		Details:   "all parties signed",
		Timestamp: time.Now().UTC(),
	}

	applied, err := s.repo.FinalizeContract(ctx, contract, entry)
	if err != nil {
		return fmt.Errorf("error finalizing contract: %w", err)
	}
	if !applied {
		// A concurrent signer finalized first; nothing left to do
		return nil
	}

	s.logger.Info("contract %s completed, document hash %s", contract.ID, hash)

	recipients := map[string]bool{contract.Creator: true}
	for i := range contract.Parties {
		if p := &contract.Parties[i]; p.UserID != nil {
			recipients[*p.UserID] = true
		}
	}
	for recipient := range recipients {
		s.notify(ctx, &models.Notification{
			Recipient:  recipient,
			Type:       models.NotificationContractCompleted,
			Title:      "Contract completed",
			Message:    fmt.Sprintf("%q has been signed by all parties", contract.Title),
			ContractID: &contract.ID,
			ActionLink: "/verify/" + contract.VerificationCode,
		})
	}

	return nil
}

// VerifyContract returns the public, reduced verification view. It never
// fails on incomplete contracts; isVerified simply stays false.
func (s *DefaultService) VerifyContract(ctx context.Context, identifier string) (*models.VerificationResponse, error) {
	contract, err := s.repo.GetContractByVerification(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("error getting contract: %w", err)
	}

	if contract == nil {
		return nil, fmt.Errorf("contract not found: %w", apperrors.ErrNotFound)
	}

	resp := &models.VerificationResponse{
		Status:       contract.Status,
		Title:        contract.Title,
		CreatedAt:    contract.CreatedAt,
		DocumentHash: contract.DocumentHash,
		Blockchain:   contract.Blockchain,
		IsVerified:   contract.Status == models.StatusCompleted && contract.Blockchain.Stored,
	}

	if creator, err := s.repo.GetUserByID(ctx, contract.Creator); err == nil && creator != nil {
		resp.CreatorName = creator.Name
	}

	if template, err := s.repo.GetTemplate(ctx, contract.TemplateID); err == nil && template != nil {
		resp.TemplateName = template.Name
		resp.TemplateCategory = template.Category
	}

	resp.Parties = make([]models.VerificationParty, 0, len(contract.Parties))
	for i := range contract.Parties {
		p := &contract.Parties[i]
		email := p.Email
		if !contract.IsPublic {
			email = maskEmail(email)
		}
		resp.Parties = append(resp.Parties, models.VerificationParty{
			Email:              email,
			Role:               p.Role,
			Signed:             p.Signed,
			SignatureTimestamp: p.SignatureTimestamp,
		})
	}

	return resp, nil
}

// maskEmail hides the local part of an address on non-public contracts
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return "***"
	}
	if at <= 1 {
		return "***@" + email[at+1:]
	}
	return email[:1] + "***@" + email[at+1:]
}
