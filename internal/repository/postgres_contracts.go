package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/covenantlabs/covenant-server/internal/apperrors"
	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/google/uuid"
)

// Blockchain columns are aliased to the dotted paths sqlx uses for the
// nested BlockchainRecord struct.
const contractColumns = `
	id, title, description, template_id, creator, content, status,
	document_hash, expiry_date, is_public, verification_code,
	bc_stored AS "blockchain.stored",
	bc_tx_hash AS "blockchain.tx_hash",
	bc_block_number AS "blockchain.block_number",
	bc_timestamp AS "blockchain.timestamp",
	bc_network AS "blockchain.network",
	created_at, updated_at
`

// Contract repository methods

// CreateContract inserts the contract, its parties and initial history in
// one transaction and increments the source template's usage counter.
func (r *PostgresRepository) CreateContract(ctx context.Context, contract *models.Contract) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	// Generate a new UUID if not provided
	if contract.ID == "" {
		contract.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	contract.CreatedAt = now
	contract.UpdatedAt = now

	query := `
		INSERT INTO contracts (id, title, description, template_id, creator, content,
			status, document_hash, expiry_date, is_public, verification_code,
			bc_stored, bc_tx_hash, bc_block_number, bc_timestamp, bc_network,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err = tx.ExecContext(ctx, query,
		contract.ID, contract.Title, contract.Description, contract.TemplateID,
		contract.Creator, contract.Content, contract.Status, contract.DocumentHash,
		contract.ExpiryDate, contract.IsPublic, contract.VerificationCode,
		contract.Blockchain.Stored, contract.Blockchain.TransactionHash,
		contract.Blockchain.BlockNumber, contract.Blockchain.Timestamp,
		contract.Blockchain.Network, contract.CreatedAt, contract.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range contract.Parties {
		party := &contract.Parties[i]
		party.ContractID = contract.ID
		party.Position = i

		_, err = tx.ExecContext(ctx, `
			INSERT INTO contract_parties (contract_id, position, user_id, email, role,
				signed, signature_timestamp, signature_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			party.ContractID, party.Position, party.UserID, party.Email, party.Role,
			party.Signed, party.SignatureTimestamp, party.SignatureHash)
		if err != nil {
			return err
		}
	}

	for i := range contract.History {
		entry := &contract.History[i]
		entry.ContractID = contract.ID
		if err = insertHistoryTx(ctx, tx, entry); err != nil {
			return err
		}
	}

	// Each instantiation counts against the source template
	_, err = tx.ExecContext(ctx,
		`UPDATE templates SET usage_count = usage_count + 1 WHERE id = $1`,
		contract.TemplateID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetContract(ctx context.Context, contractID string) (*models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`

	var contract models.Contract
	err := r.db.GetContext(ctx, &contract, query, contractID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Contract not found
		}
		return nil, err
	}

	if err := r.loadContractDetails(ctx, &contract); err != nil {
		return nil, err
	}

	return &contract, nil
}

// GetContractByVerification looks up a contract by its verification code,
// falling back to the contract id so links from either variant resolve.
func (r *PostgresRepository) GetContractByVerification(ctx context.Context, identifier string) (*models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE verification_code = $1 OR id = $1`

	var contract models.Contract
	err := r.db.GetContext(ctx, &contract, query, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Contract not found
		}
		return nil, err
	}

	if err := r.loadContractDetails(ctx, &contract); err != nil {
		return nil, err
	}

	return &contract, nil
}

// GetUserContracts returns contracts where the user is the creator or a
// listed party (bound by account id or invited by email), newest first.
func (r *PostgresRepository) GetUserContracts(ctx context.Context, userID, email string) ([]models.Contract, error) {
	query := `
		SELECT ` + contractColumns + ` FROM contracts
		WHERE creator = $1 OR id IN (
			SELECT contract_id FROM contract_parties
			WHERE user_id = $1 OR lower(email) = lower($2)
		)
		ORDER BY created_at DESC
	`

	var contracts []models.Contract
	err := r.db.SelectContext(ctx, &contracts, query, userID, email)
	if err != nil {
		return nil, err
	}

	for i := range contracts {
		if err := r.loadContractDetails(ctx, &contracts[i]); err != nil {
			return nil, err
		}
	}

	return contracts, nil
}

// UpdateContract persists mutable contract fields and appends one history entry
func (r *PostgresRepository) UpdateContract(ctx context.Context, contract *models.Contract, entry *models.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	contract.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE contracts
		SET title = $1, description = $2, content = $3, status = $4,
			expiry_date = $5, is_public = $6, updated_at = $7
		WHERE id = $8`,
		contract.Title, contract.Description, contract.Content, contract.Status,
		contract.ExpiryDate, contract.IsPublic, contract.UpdatedAt, contract.ID)
	if err != nil {
		return err
	}

	if entry != nil {
		entry.ContractID = contract.ID
		if err = insertHistoryTx(ctx, tx, entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) DeleteContract(ctx context.Context, contractID string) error {
	// Parties, history and notifications cascade
	_, err := r.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = $1`, contractID)
	return err
}

// Signing workflow methods

// MarkPartySigned records a party's signature. The signed = FALSE guard
// makes a duplicate or racing signature surface as a conflict instead of
// silently overwriting the earlier one.
func (r *PostgresRepository) MarkPartySigned(ctx context.Context, party *models.Party, entry *models.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE contract_parties
		SET signed = TRUE, signature_timestamp = $1, signature_hash = $2
		WHERE contract_id = $3 AND position = $4 AND signed = FALSE`,
		party.SignatureTimestamp, party.SignatureHash, party.ContractID, party.Position)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = fmt.Errorf("party %q already signed: %w", party.Email, apperrors.ErrConflict)
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE contracts SET updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), party.ContractID)
	if err != nil {
		return err
	}

	if entry != nil {
		entry.ContractID = party.ContractID
		if err = insertHistoryTx(ctx, tx, entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) CountUnsignedParties(ctx context.Context, contractID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM contract_parties WHERE contract_id = $1 AND signed = FALSE`,
		contractID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// FinalizeContract transitions the contract to completed and attaches the
// document hash and blockchain record. The guard re-checks completeness
// inside the transaction, so only the true last signer's call wins; it
// returns false when the transition did not apply.
func (r *PostgresRepository) FinalizeContract(ctx context.Context, contract *models.Contract, entry *models.HistoryEntry) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	contract.UpdatedAt = time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		UPDATE contracts
		SET status = $1, document_hash = $2,
			bc_stored = $3, bc_tx_hash = $4, bc_block_number = $5,
			bc_timestamp = $6, bc_network = $7, updated_at = $8
		WHERE id = $9 AND status = $10
			AND NOT EXISTS (
				SELECT 1 FROM contract_parties
				WHERE contract_id = $9 AND signed = FALSE
			)`,
		models.StatusCompleted, contract.DocumentHash,
		contract.Blockchain.Stored, contract.Blockchain.TransactionHash,
		contract.Blockchain.BlockNumber, contract.Blockchain.Timestamp,
		contract.Blockchain.Network, contract.UpdatedAt,
		contract.ID, models.StatusPendingSignatures)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, tx.Commit()
	}

	if entry != nil {
		entry.ContractID = contract.ID
		if err = insertHistoryTx(ctx, tx, entry); err != nil {
			return false, err
		}
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}

	contract.Status = models.StatusCompleted
	return true, nil
}

// ExpireContract lazily marks a pending contract as expired
func (r *PostgresRepository) ExpireContract(ctx context.Context, contractID string, when time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE contracts SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`,
		models.StatusExpired, when, contractID, models.StatusPendingSignatures)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected > 0 {
		entry := &models.HistoryEntry{
			ContractID: contractID,
			Action:     "expired",
			Details:    "contract passed its expiry date",
			Timestamp:  when,
		}
		if err = insertHistoryTx(ctx, tx, entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Helpers

func (r *PostgresRepository) loadContractDetails(ctx context.Context, contract *models.Contract) error {
	err := r.db.SelectContext(ctx, &contract.Parties,
		`SELECT * FROM contract_parties WHERE contract_id = $1 ORDER BY position ASC`,
		contract.ID)
	if err != nil {
		return err
	}

	return r.db.SelectContext(ctx, &contract.History,
		`SELECT * FROM contract_history WHERE contract_id = $1 ORDER BY timestamp ASC, id ASC`,
		contract.ID)
}

func insertHistoryTx(ctx context.Context, tx *sql.Tx, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO contract_history (id, contract_id, action, user_id, details, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.ContractID, entry.Action, entry.UserID, entry.Details, entry.Timestamp)
	return err
}
