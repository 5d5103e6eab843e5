package dao

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps products, batches and sales in process memory. It
// satisfies the same DAO contracts as the gorm DAOs and is selected with
// storage.driver=memory.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[uint]Product
	batches  map[uint]StockBatch
	sales    []Sale

	nextProductID  uint
	nextBatchID    uint
	nextSaleID     uint
	nextSaleLineID uint

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[uint]Product),
		batches:  make(map[uint]StockBatch),
		now:      time.Now,
	}
}

func (s *MemoryStore) InsertProduct(ctx context.Context, product Product) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.Name == product.Name {
			return Product{}, ErrProductNameExists
		}
	}

	s.nextProductID++
	now := s.now()
	product.ID = s.nextProductID
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = product

	return product, nil
}

func (s *MemoryStore) FindProductByID(ctx context.Context, id uint) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *MemoryStore) FindAllProducts(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	return products, nil
}

func (s *MemoryStore) InsertBatch(ctx context.Context, batch StockBatch) (StockBatch, error) {
	if err := ctx.Err(); err != nil {
		return StockBatch{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[batch.ProductID]; !ok {
		return StockBatch{}, ErrProductNotFound
	}

	s.nextBatchID++
	batch.ID = s.nextBatchID
	s.batches[batch.ID] = batch

	return batch, nil
}

func (s *MemoryStore) FindBatchByID(ctx context.Context, id uint) (StockBatch, error) {
	if err := ctx.Err(); err != nil {
		return StockBatch{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batches[id]
	if !ok {
		return StockBatch{}, &MissingBatchError{BatchID: id}
	}
	return b, nil
}

func (s *MemoryStore) FindBatchesByProductID(ctx context.Context, productID uint) ([]StockBatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var batches []StockBatch
	for _, b := range s.batches {
		if b.ProductID == productID {
			batches = append(batches, b)
		}
	}
	sortBatches(batches)

	return batches, nil
}

func (s *MemoryStore) FindAllBatches(ctx context.Context) ([]StockBatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	batches := make([]StockBatch, 0, len(s.batches))
	for _, b := range s.batches {
		batches = append(batches, b)
	}
	sortBatches(batches)

	return batches, nil
}

func (s *MemoryStore) SumQuantityByProductID(ctx context.Context, productID uint) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, b := range s.batches {
		if b.ProductID == productID {
			total += b.Quantity
		}
	}
	return total, nil
}

func (s *MemoryStore) DecrementBatch(ctx context.Context, batchID uint, amount int) (StockBatch, error) {
	if err := ctx.Err(); err != nil {
		return StockBatch{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[batchID]
	if !ok {
		return StockBatch{}, &MissingBatchError{BatchID: batchID}
	}
	if b.Quantity < amount {
		return StockBatch{}, &ShortageError{BatchID: b.ID, Requested: amount, Available: b.Quantity}
	}

	b.Quantity -= amount
	s.batches[b.ID] = b

	return b, nil
}

func (s *MemoryStore) CommitDispense(ctx context.Context, sale Sale, plan DispensePlanner) (Sale, error) {
	if err := ctx.Err(); err != nil {
		return Sale{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var batches []StockBatch
	for _, b := range s.batches {
		if b.ProductID == sale.ProductID {
			batches = append(batches, b)
		}
	}
	sortBatches(batches)

	lines, err := plan(batches)
	if err != nil {
		return Sale{}, err
	}
	sale.Lines = lines

	// validate every line before touching any batch
	pending := make(map[uint]int, len(sale.Lines))
	for _, line := range sale.Lines {
		b, ok := s.batches[line.BatchID]
		if !ok || b.ProductID != sale.ProductID {
			return Sale{}, &MissingBatchError{BatchID: line.BatchID}
		}
		pending[b.ID] += line.Quantity
		if b.Quantity < pending[b.ID] {
			return Sale{}, &ShortageError{BatchID: b.ID, Requested: pending[b.ID], Available: b.Quantity}
		}
	}

	for batchID, qty := range pending {
		b := s.batches[batchID]
		b.Quantity -= qty
		s.batches[batchID] = b
	}

	s.nextSaleID++
	sale.ID = s.nextSaleID
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = s.now()
	}
	lines = make([]SaleLine, len(sale.Lines))
	for i, line := range sale.Lines {
		s.nextSaleLineID++
		line.ID = s.nextSaleLineID
		line.SaleID = sale.ID
		lines[i] = line
	}
	sale.Lines = lines
	s.sales = append(s.sales, sale)

	return sale, nil
}

func (s *MemoryStore) FindSalesByProductID(ctx context.Context, productID uint) ([]Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var sales []Sale
	for i := len(s.sales) - 1; i >= 0; i-- {
		if s.sales[i].ProductID == productID {
			sales = append(sales, s.sales[i])
		}
	}
	return sales, nil
}

func sortBatches(batches []StockBatch) {
	sort.Slice(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		return a.ID < b.ID
	})
}
