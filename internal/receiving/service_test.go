package receiving

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
	notes      []GoodsReceivedNote
	lines      []GRNLine
	numbers    map[string]bool
	nextID     int
	failLine   bool
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
	snapshot.notes = append([]GoodsReceivedNote(nil), r.notes...)
	snapshot.lines = append([]GRNLine(nil), r.lines...)

	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		*r = snapshot
		return err
	}
	return nil
}

func (r *memoryRepo) List(ctx context.Context) ([]GoodsReceivedNote, error) {
	return append([]GoodsReceivedNote(nil), r.notes...), nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (GoodsReceivedNote, []GRNLine, error) {
	for _, n := range r.notes {
		if n.ID == id {
			lines := []GRNLine{}
			for _, l := range r.lines {
				if l.GRNID == id {
					lines = append(lines, l)
				}
			}
			return n, lines, nil
		}
	}
	return GoodsReceivedNote{}, nil, ErrNotFound
}

func (tx *memoryTx) InsertGRN(ctx context.Context, grn GoodsReceivedNote) (string, error) {
	if tx.repo.numbers[grn.GRNNumber] {
		return "", ErrDuplicateNumber
	}
	tx.repo.numbers[grn.GRNNumber] = true
	tx.repo.nextID++
	grn.ID = fmt.Sprintf("grn-%d", tx.repo.nextID)
	tx.repo.notes = append(tx.repo.notes, grn)
	return grn.ID, nil
}

func (tx *memoryTx) InsertLine(ctx context.Context, line GRNLine) error {
	if tx.repo.failLine {
		return fmt.Errorf("insert line: connection reset")
	}
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

func receiveInput(number string, lines ...GRNLineInput) CreateGRNInput {
	return CreateGRNInput{
		GRNNumber:    number,
		ReceivedDate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		ReceivedBy:   "user-1",
		Lines:        lines,
	}
}

func TestReceive(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["item-1"] = 4
	repo.quantities["item-2"] = 0
	svc := NewService(repo, stock.NewLedger(), nil)

	grn, err := svc.Receive(context.Background(), receiveInput("GRN-2026-001",
		GRNLineInput{ItemID: "item-1", Quantity: 20},
		GRNLineInput{ItemID: "item-2", Quantity: 3.5},
	))
	require.NoError(t, err)
	require.NotEmpty(t, grn.ID)

	require.InDelta(t, 24.0, repo.quantities["item-1"], 0.0001)
	require.InDelta(t, 3.5, repo.quantities["item-2"], 0.0001)

	require.Len(t, repo.movements, 2)
	first := repo.movements[0]
	require.Equal(t, stock.MovementIn, first.Type)
	require.InDelta(t, 24.0, first.BalanceAfter, 0.0001)
	require.Equal(t, stock.ReferenceGRN, first.ReferenceType)
	require.Equal(t, grn.ID, first.ReferenceID)
	require.Equal(t, "GRN GRN-2026-001", first.Reason)
	require.Equal(t, "user-1", first.PerformedBy)
}

func TestReceiveSameItemTwice(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["item-1"] = 0
	svc := NewService(repo, stock.NewLedger(), nil)

	_, err := svc.Receive(context.Background(), receiveInput("GRN-2026-002",
		GRNLineInput{ItemID: "item-1", Quantity: 5},
		GRNLineInput{ItemID: "item-1", Quantity: 3},
	))
	require.NoError(t, err)

	require.InDelta(t, 8.0, repo.quantities["item-1"], 0.0001)
	require.Len(t, repo.movements, 2)
	require.InDelta(t, 5.0, repo.movements[0].BalanceAfter, 0.0001)
	require.InDelta(t, 8.0, repo.movements[1].BalanceAfter, 0.0001)
}

func TestReceiveUnknownItemRollsBack(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["item-1"] = 4
	svc := NewService(repo, stock.NewLedger(), nil)

	_, err := svc.Receive(context.Background(), receiveInput("GRN-2026-003",
		GRNLineInput{ItemID: "item-1", Quantity: 20},
		GRNLineInput{ItemID: "missing", Quantity: 1},
	))
	require.ErrorIs(t, err, stock.ErrItemNotFound)

	// first line's increment must not survive the rollback
	require.InDelta(t, 4.0, repo.quantities["item-1"], 0.0001)
	require.Empty(t, repo.movements)
	require.Empty(t, repo.notes)
}

func TestReceiveDuplicateNumber(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["item-1"] = 0
	svc := NewService(repo, stock.NewLedger(), nil)
	ctx := context.Background()

	_, err := svc.Receive(ctx, receiveInput("GRN-2026-004", GRNLineInput{ItemID: "item-1", Quantity: 1}))
	require.NoError(t, err)

	_, err = svc.Receive(ctx, receiveInput("GRN-2026-004", GRNLineInput{ItemID: "item-1", Quantity: 1}))
	require.ErrorIs(t, err, ErrDuplicateNumber)
	require.InDelta(t, 1.0, repo.quantities["item-1"], 0.0001)
}

func TestReceiveStoreFailureAborts(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["item-1"] = 0
	repo.failLine = true
	svc := NewService(repo, stock.NewLedger(), nil)

	_, err := svc.Receive(context.Background(), receiveInput("GRN-2026-005", GRNLineInput{ItemID: "item-1", Quantity: 2}))
	require.ErrorIs(t, err, stock.ErrTransactionAborted)
	require.InDelta(t, 0.0, repo.quantities["item-1"], 0.0001)
	require.Empty(t, repo.notes)
}

func TestReceiveValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stock.NewLedger(), nil)
	ctx := context.Background()

	_, err := svc.Receive(ctx, receiveInput(""))
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Receive(ctx, receiveInput("GRN-2026-006"))
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Receive(ctx, receiveInput("GRN-2026-006", GRNLineInput{ItemID: "item-1", Quantity: -2}))
	require.ErrorIs(t, err, ErrValidation)
}
