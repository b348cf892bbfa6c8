package issuing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kechei-store/warehouse-api/internal/stock"
	_ "github.com/kechei-store/warehouse-api/testing"
)

type memoryRepo struct {
	quantities map[string]float64
	movements  []stock.Movement
	issues     []StockIssue
	lines      []IssueLine
	numbers    map[string]bool
	nextID     int
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{quantities: make(map[string]float64), numbers: make(map[string]bool)}
}

// WithTx runs fn against snapshots and keeps the mutations only when fn
// succeeds, mirroring commit/rollback.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := *r
	snapshot.quantities = make(map[string]float64, len(r.quantities))
	for k, v := range r.quantities {
		snapshot.quantities[k] = v
	}
	snapshot.numbers = make(map[string]bool, len(r.numbers))
	for k, v := range r.numbers {
		snapshot.numbers[k] = v
	}
	snapshot.movements = append([]stock.Movement(nil), r.movements...)
	snapshot.issues = append([]StockIssue(nil), r.issues...)
	snapshot.lines = append([]IssueLine(nil), r.lines...)

	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		*r = snapshot
		return err
	}
	return nil
}

func (r *memoryRepo) List(ctx context.Context) ([]StockIssue, error) {
	return append([]StockIssue(nil), r.issues...), nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (StockIssue, []IssueLine, error) {
	for _, issue := range r.issues {
		if issue.ID == id {
			lines := []IssueLine{}
			for _, l := range r.lines {
				if l.IssueID == id {
					lines = append(lines, l)
				}
			}
			return issue, lines, nil
		}
	}
	return StockIssue{}, nil, ErrNotFound
}

func (tx *memoryTx) InsertIssue(ctx context.Context, issue StockIssue) (string, error) {
	if tx.repo.numbers[issue.IssueNumber] {
		return "", ErrDuplicateNumber
	}
	tx.repo.numbers[issue.IssueNumber] = true
	tx.repo.nextID++
	issue.ID = fmt.Sprintf("issue-%d", tx.repo.nextID)
	tx.repo.issues = append(tx.repo.issues, issue)
	return issue.ID, nil
}

func (tx *memoryTx) InsertLine(ctx context.Context, line IssueLine) error {
	tx.repo.lines = append(tx.repo.lines, line)
	return nil
}

func (tx *memoryTx) Stock() stock.TxStore {
	return &memoryTxStore{repo: tx.repo}
}

type memoryTxStore struct {
	repo *memoryRepo
}

func (s *memoryTxStore) Quantity(ctx context.Context, itemID string) (float64, error) {
	qty, ok := s.repo.quantities[itemID]
	if !ok {
		return 0, stock.ErrItemNotFound
	}
	return qty, nil
}

func (s *memoryTxStore) QuantityForUpdate(ctx context.Context, itemID string) (float64, error) {
	return s.Quantity(ctx, itemID)
}

func (s *memoryTxStore) SetQuantity(ctx context.Context, itemID string, quantity float64) error {
	if _, ok := s.repo.quantities[itemID]; !ok {
		return stock.ErrItemNotFound
	}
	s.repo.quantities[itemID] = quantity
	return nil
}

func (s *memoryTxStore) AppendMovement(ctx context.Context, m stock.Movement) error {
	s.repo.movements = append(s.repo.movements, m)
	return nil
}

func issueInput(number string, lines ...IssueLineInput) CreateIssueInput {
	return CreateIssueInput{
		IssueNumber:  number,
		DepartmentID: "dept-1",
		IssuedTo:     "Maria Santos",
		IssuedBy:     "user-1",
		IssueDate:    time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
		Notes:        "urgent ward restock",
		Lines:        lines,
	}
}

func TestIssue(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["item-1"] = 10
	svc := NewService(repo, stock.NewLedger(), nil)

	issue, err := svc.Issue(context.Background(), issueInput("ISS-2026-001", IssueLineInput{ItemID: "item-1", Quantity: 6}))
	require.NoError(t, err)
	require.NotEmpty(t, issue.ID)
	require.Equal(t, StatusIssued, issue.Status)
	require.Equal(t, "dept-1", repo.issues[0].DepartmentID)
	require.Equal(t, "urgent ward restock", repo.issues[0].Notes)

	require.InDelta(t, 4.0, repo.quantities["item-1"], 0.0001)

	require.Len(t, repo.lines, 1)
	require.InDelta(t, 6.0, repo.lines[0].QuantityRequested, 0.0001)
	require.InDelta(t, 6.0, repo.lines[0].QuantityIssued, 0.0001)

	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	require.Equal(t, stock.MovementOut, m.Type)
	require.InDelta(t, 6.0, m.Quantity, 0.0001)
	require.InDelta(t, 4.0, m.BalanceAfter, 0.0001)
	require.Equal(t, stock.ReferenceIssue, m.ReferenceType)
	require.Equal(t, issue.ID, m.ReferenceID)
	require.Equal(t, "Issue ISS-2026-001 to Maria Santos", m.Reason)
}

func TestIssueInsufficientStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["item-1"] = 10
	svc := NewService(repo, stock.NewLedger(), nil)

	_, err := svc.Issue(context.Background(), issueInput("ISS-2026-002", IssueLineInput{ItemID: "item-1", Quantity: 12}))
	require.ErrorIs(t, err, stock.ErrInsufficientStock)

	var insufficient *stock.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, "item-1", insufficient.ItemID)
	require.InDelta(t, 12.0, insufficient.Requested, 0.0001)
	require.InDelta(t, 10.0, insufficient.Available, 0.0001)

	require.InDelta(t, 10.0, repo.quantities["item-1"], 0.0001)
	require.Empty(t, repo.issues)
	require.Empty(t, repo.movements)
}

func TestIssueAggregatesDuplicateLines(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["item-1"] = 10
	svc := NewService(repo, stock.NewLedger(), nil)

	// two lines for the same item: 7 + 7 exceeds 10 even though each line
	// alone would fit
	_, err := svc.Issue(context.Background(), issueInput("ISS-2026-003",
		IssueLineInput{ItemID: "item-1", Quantity: 7},
		IssueLineInput{ItemID: "item-1", Quantity: 7},
	))
	require.ErrorIs(t, err, stock.ErrInsufficientStock)
	require.InDelta(t, 10.0, repo.quantities["item-1"], 0.0001)
	require.Empty(t, repo.issues)
}

func TestIssueMultipleItems(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["item-1"] = 10
	repo.quantities["item-2"] = 2.5
	svc := NewService(repo, stock.NewLedger(), nil)

	issue, err := svc.Issue(context.Background(), issueInput("ISS-2026-004",
		IssueLineInput{ItemID: "item-1", Quantity: 4},
		IssueLineInput{ItemID: "item-2", Quantity: 2.5},
	))
	require.NoError(t, err)

	require.InDelta(t, 6.0, repo.quantities["item-1"], 0.0001)
	require.InDelta(t, 0.0, repo.quantities["item-2"], 0.0001)
	require.Len(t, repo.movements, 2)
	require.Equal(t, issue.ID, repo.movements[1].ReferenceID)
}

func TestIssueUnknownItem(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["item-1"] = 10
	svc := NewService(repo, stock.NewLedger(), nil)

	_, err := svc.Issue(context.Background(), issueInput("ISS-2026-005",
		IssueLineInput{ItemID: "item-1", Quantity: 1},
		IssueLineInput{ItemID: "missing", Quantity: 1},
	))
	require.ErrorIs(t, err, stock.ErrItemNotFound)
	require.InDelta(t, 10.0, repo.quantities["item-1"], 0.0001)
	require.Empty(t, repo.issues)
}

func TestIssueDuplicateNumber(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["item-1"] = 10
	svc := NewService(repo, stock.NewLedger(), nil)
	ctx := context.Background()

	_, err := svc.Issue(ctx, issueInput("ISS-2026-006", IssueLineInput{ItemID: "item-1", Quantity: 1}))
	require.NoError(t, err)

	_, err = svc.Issue(ctx, issueInput("ISS-2026-006", IssueLineInput{ItemID: "item-1", Quantity: 1}))
	require.ErrorIs(t, err, ErrDuplicateNumber)
	require.InDelta(t, 9.0, repo.quantities["item-1"], 0.0001)
	require.Len(t, repo.issues, 1)
}

func TestIssueValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stock.NewLedger(), nil)
	ctx := context.Background()

	_, err := svc.Issue(ctx, issueInput(""))
	require.ErrorIs(t, err, ErrValidation)

	input := issueInput("ISS-2026-007", IssueLineInput{ItemID: "item-1", Quantity: 1})
	input.IssuedTo = ""
	_, err = svc.Issue(ctx, input)
	require.ErrorIs(t, err, ErrValidation)

	input = issueInput("ISS-2026-007", IssueLineInput{ItemID: "item-1", Quantity: 1})
	input.DepartmentID = ""
	_, err = svc.Issue(ctx, input)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Issue(ctx, issueInput("ISS-2026-007", IssueLineInput{ItemID: "item-1", Quantity: 0}))
	require.ErrorIs(t, err, ErrValidation)
}
