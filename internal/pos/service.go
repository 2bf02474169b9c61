package pos

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"coop-pos/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Operator is the authenticated user ringing up the sale.
type Operator struct {
	UserID uint
	Role   models.Role
}

type Options struct {
	// EnforceCatalogPrice rejects lines whose unit price differs from the
	// catalog price for the buyer. Off by default: the counter's price is trusted.
	EnforceCatalogPrice bool
	// CurrencyScale is the number of decimal places installment dues are rounded to.
	// Values outside 0..2 fall back to 2, the precision of the money columns.
	CurrencyScale int32
	Clock         func() time.Time
	Metrics       *Metrics
}

type Service struct {
	db      *gorm.DB
	opts    Options
	metrics *Metrics
	tracer  trace.Tracer
}

func NewService(db *gorm.DB, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.CurrencyScale < 0 || opts.CurrencyScale > moneyDecimals {
		opts.CurrencyScale = moneyDecimals
	}
	return &Service{
		db:      db,
		opts:    opts,
		metrics: opts.Metrics,
		tracer:  otel.Tracer("coop-pos/pos"),
	}
}

type requestIDKey struct{}

// WithRequestID attaches the HTTP request id so checkout logs can be correlated.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Checkout validates the cart and records the sale as one unit of work:
// header, items, stock decrements, member points and, for installment sales,
// the plan with its full schedule. Nothing is written when any step fails.
func (s *Service) Checkout(ctx context.Context, op Operator, req CheckoutRequest) (*models.Transaction, error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "pos.checkout",
		trace.WithAttributes(
			attribute.Int("cart.lines", len(req.Items)),
			attribute.String("payment.method", string(req.PaymentMethod)),
			attribute.Int("operator.id", int(op.UserID)),
		),
	)
	defer span.End()

	txn, replayed, err := s.checkout(ctx, op, req)

	outcome := outcomeCompleted
	switch {
	case err != nil && isRejection(err):
		outcome = outcomeRejected
	case err != nil:
		outcome = outcomeFailed
	case replayed:
		outcome = outcomeReplayed
	}
	s.metrics.observe(outcome, time.Since(started))
	span.SetAttributes(attribute.String("checkout.outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		log.Printf("[pos] checkout %s request=%s operator=%d: %v", outcome, requestID(ctx), op.UserID, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("transaction.number", txn.TransactionNumber))
	log.Printf("[pos] checkout %s request=%s operator=%d number=%s final=%s",
		outcome, requestID(ctx), op.UserID, txn.TransactionNumber, txn.FinalAmount.StringFixed(2))
	return txn, nil
}

func isRejection(err error) bool {
	var v *ValidationError
	return errors.As(err, &v) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInsufficientPoints) ||
		errors.Is(err, ErrNoOperator)
}

func (s *Service) checkout(ctx context.Context, op Operator, req CheckoutRequest) (*models.Transaction, bool, error) {
	if op.UserID == 0 {
		return nil, false, ErrNoOperator
	}
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	if req.IdempotencyKey != "" {
		if existing, err := s.findByIdempotencyKey(ctx, req.IdempotencyKey); err != nil {
			return nil, false, err
		} else if existing != nil {
			return existing, true, nil
		}
	}

	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = s.record(ctx, tx, op, req)
		return err
	})
	if err != nil {
		// A concurrent retry with the same key may have won the insert.
		if req.IdempotencyKey != "" && !isRejection(err) {
			if existing, lookupErr := s.findByIdempotencyKey(ctx, req.IdempotencyKey); lookupErr == nil && existing != nil {
				return existing, true, nil
			}
		}
		return nil, false, err
	}

	txn, err := s.Receipt(ctx, id)
	return txn, false, err
}

// record performs every write of the checkout on tx.
func (s *Service) record(ctx context.Context, tx *gorm.DB, op Operator, req CheckoutRequest) (uint, error) {
	_, span := s.tracer.Start(ctx, "pos.checkout.record")
	defer span.End()

	products, err := lockProducts(tx, req.Items)
	if err != nil {
		return 0, err
	}

	var member *models.Member
	if req.MemberID != nil {
		if member, err = lockMember(tx, *req.MemberID); err != nil {
			return 0, err
		}
		if req.PointsUsed > member.Points {
			return 0, fieldError("points_used",
				fmt.Sprintf("member has only %d points", member.Points), ErrInsufficientPoints)
		}
	}

	lines := make([]PricedLine, len(req.Items))
	for i, line := range req.Items {
		p := products[line.ProductID]
		if s.opts.EnforceCatalogPrice {
			if want := p.PriceFor(member); !line.UnitPrice.Equal(want) {
				return 0, fieldError(fmt.Sprintf("items.%d.unit_price", i),
					fmt.Sprintf("unit price must be %s for %s", want.StringFixed(2), p.Name), nil)
			}
		}
		lines[i] = PricedLine{Quantity: line.Quantity, UnitPrice: line.UnitPrice, PointsPerUnit: p.PointsEarned}
	}

	totals := ComputeTotals(lines, req.DiscountAmount, req.PointsUsed)
	down := req.downPayment()
	if req.IsInstallment() && down.GreaterThan(totals.FinalAmount) {
		return 0, fieldError("down_payment", "down payment must not exceed the amount due", nil)
	}

	now := s.opts.Clock()
	number, err := NextNumber(tx, models.TypeSale, now)
	if err != nil {
		return 0, err
	}

	txn := models.Transaction{
		TransactionNumber: number,
		Type:              models.TypeSale,
		MemberID:          req.MemberID,
		UserID:            op.UserID,
		TotalAmount:       totals.TotalAmount,
		DiscountAmount:    totals.DiscountAmount,
		FinalAmount:       totals.FinalAmount,
		PaymentMethod:     req.PaymentMethod,
		Status:            models.StatusCompleted,
		Notes:             req.Notes,
		PointsUsed:        totals.PointsUsed,
		PointsEarned:      totals.PointsEarned,
		CompletedAt:       &now,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		txn.IdempotencyKey = &key
	}
	// GORM inserts the items together with the header
	for i, line := range req.Items {
		txn.Items = append(txn.Items, models.TransactionItem{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: lines[i].Total(),
		})
	}
	if err := tx.Create(&txn).Error; err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	for _, id := range sortedProductIDs(req.Items) {
		if err := decrementStock(tx, products[id], quantityOf(req.Items, id)); err != nil {
			return 0, err
		}
	}

	if member != nil && (totals.PointsUsed > 0 || totals.PointsEarned > 0) {
		if err := adjustPoints(tx, member, totals.PointsUsed, totals.PointsEarned); err != nil {
			return 0, err
		}
	}

	if req.IsInstallment() {
		schedule := BuildSchedule(now, totals.FinalAmount, down, *req.InstallmentCount, s.opts.CurrencyScale)
		if err := createInstallment(tx, &txn, member.ID, schedule); err != nil {
			return 0, err
		}
	}

	return txn.ID, nil
}

func sortedProductIDs(items []CartLine) []uint {
	seen := make(map[uint]bool, len(items))
	ids := make([]uint, 0, len(items))
	for _, l := range items {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func quantityOf(items []CartLine, id uint) int {
	n := 0
	for _, l := range items {
		if l.ProductID == id {
			n += l.Quantity
		}
	}
	return n
}

// lockProducts loads every product in the cart with a row lock, in id order
// so two checkouts sharing products cannot deadlock, and checks that stock
// covers the quantity requested across all lines.
func lockProducts(tx *gorm.DB, items []CartLine) (map[uint]*models.Product, error) {
	products := make(map[uint]*models.Product, len(items))
	for _, id := range sortedProductIDs(items) {
		var p models.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fieldError(fmt.Sprintf("items.%d.product_id", lineIndex(items, id)),
				"selected product does not exist", ErrUnknownProduct)
		}
		if err != nil {
			return nil, fmt.Errorf("load product %d: %w", id, err)
		}

		if want := quantityOf(items, id); p.StockQuantity < want {
			return nil, &StockError{ProductID: p.ID, Name: p.Name, Available: p.StockQuantity, Requested: want}
		}
		products[id] = &p
	}
	return products, nil
}

func lineIndex(items []CartLine, id uint) int {
	for i, l := range items {
		if l.ProductID == id {
			return i
		}
	}
	return -1
}

func lockMember(tx *gorm.DB, id uint) (*models.Member, error) {
	var m models.Member
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fieldError("member_id", "selected member does not exist", ErrUnknownMember)
	}
	if err != nil {
		return nil, fmt.Errorf("load member %d: %w", id, err)
	}
	return &m, nil
}

// decrementStock only succeeds while the row still holds enough stock,
// which keeps the count non-negative even where row locks are not available.
func decrementStock(tx *gorm.DB, p *models.Product, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", p.ID, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("decrement stock of product %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &StockError{ProductID: p.ID, Name: p.Name, Available: p.StockQuantity, Requested: qty}
	}
	return nil
}

func adjustPoints(tx *gorm.DB, m *models.Member, used, earned int) error {
	res := tx.Model(&models.Member{}).
		Where("id = ? AND points >= ?", m.ID, used).
		Update("points", gorm.Expr("points + ?", earned-used))
	if res.Error != nil {
		return fmt.Errorf("adjust points of member %d: %w", m.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fieldError("points_used", fmt.Sprintf("member has only %d points", m.Points), ErrInsufficientPoints)
	}
	return nil
}

func createInstallment(tx *gorm.DB, txn *models.Transaction, memberID uint, s Schedule) error {
	plan := models.Installment{
		TransactionID:     txn.ID,
		MemberID:          memberID,
		TotalAmount:       s.TotalAmount,
		DownPayment:       s.DownPayment,
		RemainingAmount:   s.RemainingAmount,
		InstallmentCount:  s.Count,
		PaidInstallments:  0,
		InstallmentAmount: s.InstallmentAmount,
		StartDate:         s.StartDate,
		EndDate:           s.EndDate,
		Status:            models.InstallmentActive,
	}
	for _, p := range s.Payments {
		plan.Payments = append(plan.Payments, models.InstallmentPayment{
			InstallmentNumber: p.Number,
			Amount:            p.Amount,
			DueDate:           p.DueDate,
			Status:            models.PaymentPending,
		})
	}
	if err := tx.Create(&plan).Error; err != nil {
		return fmt.Errorf("create installment plan: %w", err)
	}
	return nil
}

func (s *Service) findByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error) {
	var t models.Transaction
	err := s.db.WithContext(ctx).Select("id").Where("idempotency_key = ?", key).Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup idempotency key: %w", err)
	}
	return s.Receipt(ctx, t.ID)
}

// Receipt loads a transaction with everything the receipt view shows.
func (s *Service) Receipt(ctx context.Context, id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product").
		Preload("Member").
		Preload("User").
		Preload("Installment").
		Preload("Installment.Payments", func(db *gorm.DB) *gorm.DB { return db.Order("installment_number") }).
		First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load transaction %d: %w", id, err)
	}
	return &t, nil
}

// CatalogView is what the POS screen needs to build a cart.
type CatalogView struct {
	Products []models.Product `json:"products"`
	Members  []models.Member  `json:"members"`
}

func (s *Service) Catalog(ctx context.Context) (*CatalogView, error) {
	var view CatalogView
	db := s.db.WithContext(ctx)
	if err := db.Scopes(models.ActiveProducts).Order("name").Find(&view.Products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if err := db.Scopes(models.ActiveMembers).Order("name").Find(&view.Members).Error; err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return &view, nil
}
