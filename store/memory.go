package store

import (
	"sync"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY TRANSACTION SOURCE - In-memory implementation (for testing/dev)
// =============================================================================

// MemoryTransactions holds transactions in memory, keyed by employee and
// year. It implements payroll.TransactionSource.
type MemoryTransactions struct {
	mu      sync.RWMutex
	records map[memoryKey][]payroll.Transaction
}

type memoryKey struct {
	Employee string
	Year     int
}

func NewMemoryTransactions() *MemoryTransactions {
	return &MemoryTransactions{records: make(map[memoryKey][]payroll.Transaction)}
}

// Add records a transaction under its employee and date year.
func (m *MemoryTransactions) Add(transactions ...payroll.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, transaction := range transactions {
		k := memoryKey{Employee: transaction.Employee, Year: transaction.Dated.Year()}
		m.records[k] = append(m.records[k], transaction)
	}
}

// Stream implements payroll.TransactionSource.
func (m *MemoryTransactions) Stream(employeeKey string, year int, keep func(payroll.Transaction) bool) ([]payroll.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []payroll.Transaction
	for _, transaction := range m.records[memoryKey{Employee: employeeKey, Year: year}] {
		if keep == nil || keep(transaction) {
			result = append(result, transaction)
		}
	}
	return result, nil
}
