package repositories

import (
	"errors"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/models"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	CreateAccount(account *models.Account) error
	GetAccountByID(id uint) (*models.Account, error)
	GetAccountByPublicID(publicID string) (*models.Account, error)
	GetAccountByEmail(email string) (*models.Account, error)
	GetAccountByFirebaseUID(firebaseUID string) (*models.Account, error)
	GetAccountsByPublicIDs(publicIDs []string) ([]models.Account, error)
	UpdateAccount(account *models.Account) error
	SearchAccounts(query string) ([]models.Account, error)
}

// PostgresAccountRepository implements AccountRepository for PostgreSQL
type PostgresAccountRepository struct {
	db *gorm.DB
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository
func NewPostgresAccountRepository(db *gorm.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

// CreateAccount creates a new account in PostgreSQL
func (r *PostgresAccountRepository) CreateAccount(account *models.Account) error {
	return r.db.Create(account).Error
}

// GetAccountByID retrieves an account by primary key
func (r *PostgresAccountRepository) GetAccountByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		return nil, translateAccountErr(err)
	}
	return &account, nil
}

// GetAccountByPublicID retrieves an account by its engine-facing id
func (r *PostgresAccountRepository) GetAccountByPublicID(publicID string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("public_id = ?", publicID).First(&account).Error; err != nil {
		return nil, translateAccountErr(err)
	}
	return &account, nil
}

// GetAccountByEmail retrieves an account by email
func (r *PostgresAccountRepository) GetAccountByEmail(email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("email = ?", email).First(&account).Error; err != nil {
		return nil, translateAccountErr(err)
	}
	return &account, nil
}

// GetAccountByFirebaseUID retrieves an account by Firebase UID
func (r *PostgresAccountRepository) GetAccountByFirebaseUID(firebaseUID string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("firebase_uid = ?", firebaseUID).First(&account).Error; err != nil {
		return nil, translateAccountErr(err)
	}
	return &account, nil
}

// GetAccountsByPublicIDs retrieves accounts for a batch of engine ids
func (r *PostgresAccountRepository) GetAccountsByPublicIDs(publicIDs []string) ([]models.Account, error) {
	var accounts []models.Account
	if len(publicIDs) == 0 {
		return accounts, nil
	}
	if err := r.db.Where("public_id IN ?", publicIDs).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// UpdateAccount updates an existing account
func (r *PostgresAccountRepository) UpdateAccount(account *models.Account) error {
	return r.db.Save(account).Error
}

// SearchAccounts searches accounts by name or email (case-insensitive)
func (r *PostgresAccountRepository) SearchAccounts(query string) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", "%"+query+"%", "%"+query+"%").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func translateAccountErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("account not found")
	}
	return apperrors.Internal("account lookup failed", err)
}
