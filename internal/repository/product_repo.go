package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/sisterly-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const productColumns = `id, owner_id, media_id, model, brand_id, color_id, material_id, conditions, year, size,
	description, price_retail, price_offer, status, delivery_type, delivery_kit_id, kit_payed, version, created_at, updated_at`

// ProductRepository - интерфейс для работы с товарами.
type ProductRepository interface {
	CreateProduct(ctx context.Context, product models.Product) (*models.Product, error)
	GetProductById(ctx context.Context, productId string) (*models.Product, error)
	CheckProductReferences(ctx context.Context, ownerId string, productReq models.ProductRequest) (bool, error)
	GetProducts(ctx context.Context, status models.ProductStatus, limit, offset int) ([]models.Product, error)
	GetOwnerProducts(ctx context.Context, ownerId string, statuses []models.ProductStatus, limit, offset int) ([]models.Product, error)
	SearchProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetProductIssues(ctx context.Context, productId string) ([]models.Issue, error)
	InTx(ctx context.Context, fn func(tx ProductTx) error) error
}

// ProductTx - операции с товаром внутри одной транзакции.
type ProductTx interface {
	GetProductForUpdate(ctx context.Context, productId string) (*models.Product, error)
	UpdateProduct(ctx context.Context, product models.Product) (*models.Product, error)
	SetProductStatus(ctx context.Context, productId string, status models.ProductStatus) error
	AddMediaFile(ctx context.Context, kind models.MediaKind, mediaId string, fileReq models.MediaFileRequest) (*models.MediaFile, error)
	GetOpenIssue(ctx context.Context, productId string) (*models.Issue, error)
	CreateIssue(ctx context.Context, productId string) (*models.Issue, error)
	AddIssueMessage(ctx context.Context, issueId, note string) (*models.IssueMessage, error)
	CloseIssue(ctx context.Context, issueId string) error
}

// PostgresProductRepository - реализация ProductRepository для базы данных.
type PostgresProductRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresProductRepository создаёт новый экземпляр PostgresProductRepository.
func NewPostgresProductRepository(db *pgxpool.Pool) *PostgresProductRepository {
	return &PostgresProductRepository{DB: db}
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	if err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.MediaID,
		&p.Model,
		&p.BrandID,
		&p.ColorID,
		&p.MaterialID,
		&p.Conditions,
		&p.Year,
		&p.Size,
		&p.Description,
		&p.PriceRetail,
		&p.PriceOffer,
		&p.Status,
		&p.DeliveryType,
		&p.DeliveryKitID,
		&p.KitPayed,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]models.Product, error) {
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// CreateProduct сохраняет новый товар в статусе PREPARATION.
func (r *PostgresProductRepository) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	now := time.Now().UTC()
	product.ID = uuid.New().String()
	product.Status = models.PreparationProduct
	product.Version = 1
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.DB.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		product.ID,
		product.OwnerID,
		product.MediaID,
		product.Model,
		product.BrandID,
		product.ColorID,
		product.MaterialID,
		product.Conditions,
		product.Year,
		product.Size,
		product.Description,
		product.PriceRetail,
		product.PriceOffer,
		product.Status,
		product.DeliveryType,
		product.DeliveryKitID,
		product.KitPayed,
		product.Version,
		product.CreatedAt,
		product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", mapError(err))
	}
	return &product, nil
}

// GetProductById возвращает товар или nil, если его нет.
func (r *PostgresProductRepository) GetProductById(ctx context.Context, productId string) (*models.Product, error) {
	return getProduct(ctx, r.DB, productId, false)
}

func getProduct(ctx context.Context, q querier, productId string, forUpdate bool) (*models.Product, error) {
	if _, err := uuid.Parse(productId); err != nil {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	p, err := scanProduct(q.QueryRow(ctx, query, productId))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// CheckProductReferences проверяет, что медиа, бренд, цвет, материал и адрес существуют и доступны владельцу.
func (r *PostgresProductRepository) CheckProductReferences(ctx context.Context, ownerId string, productReq models.ProductRequest) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM media WHERE id = $1 AND user_id = $6) AND
			EXISTS (SELECT 1 FROM brands WHERE id = $2) AND
			EXISTS (SELECT 1 FROM colors WHERE id = $3) AND
			EXISTS (SELECT 1 FROM materials WHERE id = $4) AND
			EXISTS (SELECT 1 FROM addresses WHERE id = $5 AND user_id = $6)`,
		productReq.MediaID,
		productReq.BrandID,
		productReq.ColorID,
		productReq.MaterialID,
		productReq.DeliveryKitID,
		ownerId).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check product references: %w", err)
	}
	return ok, nil
}

// GetProducts возвращает товары с указанным статусом, новые первыми.
func (r *PostgresProductRepository) GetProducts(ctx context.Context, status models.ProductStatus, limit, offset int) ([]models.Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// GetOwnerProducts возвращает товары владельца в указанных статусах.
func (r *PostgresProductRepository) GetOwnerProducts(ctx context.Context, ownerId string, statuses []models.ProductStatus, limit, offset int) ([]models.Product, error) {
	codes := make([]int64, 0, len(statuses))
	for _, status := range statuses {
		codes = append(codes, int64(status))
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE owner_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, ownerId, pq.Array(codes), limit, offset)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// SearchProducts ищет опубликованные товары по фильтру.
func (r *PostgresProductRepository) SearchProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	filters := []string{"status = $1"}
	args := []interface{}{models.AcceptedProduct}
	argIndex := 2

	if len(filter.BrandIDs) > 0 {
		filters = append(filters, fmt.Sprintf("brand_id = ANY($%d)", argIndex))
		args = append(args, pq.Array(filter.BrandIDs))
		argIndex++
	}
	if len(filter.ColorIDs) > 0 {
		filters = append(filters, fmt.Sprintf("color_id = ANY($%d)", argIndex))
		args = append(args, pq.Array(filter.ColorIDs))
		argIndex++
	}
	if len(filter.MaterialIDs) > 0 {
		filters = append(filters, fmt.Sprintf("material_id = ANY($%d)", argIndex))
		args = append(args, pq.Array(filter.MaterialIDs))
		argIndex++
	}
	if model := strings.TrimSpace(filter.Model); model != "" {
		filters = append(filters, fmt.Sprintf("model ILIKE $%d", argIndex))
		args = append(args, "%"+escapeLike(model)+"%")
		argIndex++
	}

	query += " WHERE " + strings.Join(filters, " AND ")
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Start)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// GetProductIssues возвращает записи модерации товара вместе с замечаниями.
func (r *PostgresProductRepository) GetProductIssues(ctx context.Context, productId string) ([]models.Issue, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT i.id, i.product_id, i.is_open, i.created_at, i.updated_at, m.id, m.note, m.created_at
		FROM issues i
		LEFT JOIN issue_messages m ON m.issue_id = i.id
		WHERE i.product_id = $1
		ORDER BY i.created_at DESC, m.created_at`, productId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := make([]models.Issue, 0)
	index := make(map[string]int)
	for rows.Next() {
		var issue models.Issue
		var messageId, note *string
		var messageCreatedAt *time.Time
		if err := rows.Scan(
			&issue.ID,
			&issue.ProductID,
			&issue.Open,
			&issue.CreatedAt,
			&issue.UpdatedAt,
			&messageId,
			&note,
			&messageCreatedAt); err != nil {
			return nil, err
		}

		i, ok := index[issue.ID]
		if !ok {
			issue.Messages = make([]models.IssueMessage, 0)
			issues = append(issues, issue)
			i = len(issues) - 1
			index[issue.ID] = i
		}
		if messageId != nil {
			issues[i].Messages = append(issues[i].Messages, models.IssueMessage{
				ID:        *messageId,
				IssueID:   issue.ID,
				Note:      *note,
				CreatedAt: *messageCreatedAt,
			})
		}
	}
	return issues, rows.Err()
}

// InTx выполняет fn в транзакции.
func (r *PostgresProductRepository) InTx(ctx context.Context, fn func(tx ProductTx) error) error {
	return inTx(ctx, r.DB, func(tx pgx.Tx) error {
		return fn(&postgresProductTx{tx: tx})
	})
}

type postgresProductTx struct {
	tx pgx.Tx
}

// GetProductForUpdate блокирует строку товара до конца транзакции.
func (t *postgresProductTx) GetProductForUpdate(ctx context.Context, productId string) (*models.Product, error) {
	return getProduct(ctx, t.tx, productId, true)
}

// UpdateProduct сохраняет изменяемые поля товара и увеличивает версию.
func (t *postgresProductTx) UpdateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	updated, err := scanProduct(t.tx.QueryRow(ctx, `
		UPDATE products SET
			media_id = $1, model = $2, brand_id = $3, color_id = $4, material_id = $5,
			conditions = $6, year = $7, size = $8, description = $9,
			price_retail = $10, price_offer = $11, status = $12,
			delivery_type = $13, delivery_kit_id = $14,
			version = version + 1, updated_at = now()
		WHERE id = $15
		RETURNING `+productColumns,
		product.MediaID,
		product.Model,
		product.BrandID,
		product.ColorID,
		product.MaterialID,
		product.Conditions,
		product.Year,
		product.Size,
		product.Description,
		product.PriceRetail,
		product.PriceOffer,
		product.Status,
		product.DeliveryType,
		product.DeliveryKitID,
		product.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

// SetProductStatus меняет статус товара.
func (t *postgresProductTx) SetProductStatus(ctx context.Context, productId string, status models.ProductStatus) error {
	_, err := t.tx.Exec(ctx, `UPDATE products SET status = $1, updated_at = now() WHERE id = $2`, status, productId)
	if err != nil {
		return fmt.Errorf("failed to update product status: %w", err)
	}
	return nil
}

// AddMediaFile прикрепляет файл к контейнеру медиа в рамках транзакции.
func (t *postgresProductTx) AddMediaFile(ctx context.Context, kind models.MediaKind, mediaId string, fileReq models.MediaFileRequest) (*models.MediaFile, error) {
	return insertMediaFile(ctx, t.tx, kind, mediaId, fileReq)
}

// GetOpenIssue возвращает открытую запись модерации или nil.
func (t *postgresProductTx) GetOpenIssue(ctx context.Context, productId string) (*models.Issue, error) {
	var issue models.Issue
	err := t.tx.QueryRow(ctx, `
		SELECT id, product_id, is_open, created_at, updated_at
		FROM issues WHERE product_id = $1 AND is_open
		FOR UPDATE`, productId).Scan(
		&issue.ID,
		&issue.ProductID,
		&issue.Open,
		&issue.CreatedAt,
		&issue.UpdatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open issue: %w", err)
	}
	return &issue, nil
}

// CreateIssue открывает новую запись модерации.
func (t *postgresProductTx) CreateIssue(ctx context.Context, productId string) (*models.Issue, error) {
	now := time.Now().UTC()
	issue := models.Issue{
		ID:        uuid.New().String(),
		ProductID: productId,
		Open:      true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO issues (id, product_id, is_open, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		issue.ID, issue.ProductID, issue.Open, issue.CreatedAt, issue.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert issue: %w", mapError(err))
	}
	return &issue, nil
}

// AddIssueMessage добавляет замечание модератора.
func (t *postgresProductTx) AddIssueMessage(ctx context.Context, issueId, note string) (*models.IssueMessage, error) {
	message := models.IssueMessage{
		ID:        uuid.New().String(),
		IssueID:   issueId,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO issue_messages (id, issue_id, note, created_at)
		VALUES ($1, $2, $3, $4)`,
		message.ID, message.IssueID, message.Note, message.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert issue message: %w", err)
	}
	if _, err = t.tx.Exec(ctx, `UPDATE issues SET updated_at = now() WHERE id = $1`, issueId); err != nil {
		return nil, fmt.Errorf("failed to touch issue: %w", err)
	}
	return &message, nil
}

// CloseIssue закрывает запись модерации.
func (t *postgresProductTx) CloseIssue(ctx context.Context, issueId string) error {
	_, err := t.tx.Exec(ctx, `UPDATE issues SET is_open = false, updated_at = now() WHERE id = $1`, issueId)
	if err != nil {
		return fmt.Errorf("failed to close issue: %w", err)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
