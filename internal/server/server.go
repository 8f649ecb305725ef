package server

import (
	"log"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gharmitra/societyledger/internal/store"
)

type Server struct {
	store  *store.Store
	router chi.Router
	addr   string
}

func New(st *store.Store, addr string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	s := &Server{store: st, router: r, addr: addr}

	r.Route("/api/v1", func(r chi.Router) {
		// Chart of accounts
		r.Post("/accounts", s.createAccount)
		r.Get("/accounts", s.listAccounts)
		r.Get("/accounts/{code}", s.getAccount)
		r.Get("/accounts/{code}/balance", s.getAccountBalance)
		r.Get("/accounts/{code}/ledger", s.getAccountLedger)
		r.Patch("/accounts/{code}", s.updateAccount)
		r.Delete("/accounts/{code}", s.deleteAccount)

		// Transactions
		r.Post("/transactions", s.createTransaction)
		r.Get("/transactions", s.listTransactions)
		r.Get("/transactions/{id}", s.getTransaction)
		r.Delete("/transactions/{id}", s.deleteTransaction)

		// Journal entries
		r.Post("/journal-entries", s.createJournalEntry)
		r.Get("/journal-entries", s.listJournalEntries)
		r.Get("/journal-entries/{id}", s.getJournalEntry)

		// Financial years
		r.Post("/financial-years", s.createYear)
		r.Get("/financial-years", s.listYears)
		r.Get("/financial-years/{id}", s.getYear)
		r.Post("/financial-years/{id}/activate", s.activateYear)
		r.Post("/financial-years/{id}/provisional-close", s.provisionalCloseYear)
		r.Post("/financial-years/{id}/adjustment-entry", s.postAdjustment)
		r.Post("/financial-years/{id}/final-close", s.finalCloseYear)
		r.Post("/financial-years/{id}/reopen", s.reopenYear)
		r.Get("/financial-years/{id}/audit-log", s.yearAuditLog)

		// Opening balances
		r.Get("/opening-balances/year/{id}", s.listOpeningBalances)
		r.Put("/opening-balances/{id}", s.overrideOpeningBalance)
		r.Post("/opening-balances/{id}/finalize", s.finalizeOpeningBalance)
		r.Post("/opening-balances/year/{id}/finalize-all", s.finalizeAllOpeningBalances)

		// Reports
		r.Get("/reports/trial-balance", s.trialBalance)
		r.Get("/reports/balance-sheet", s.balanceSheet)
		r.Get("/reports/income-and-expenditure", s.incomeExpenditure)
		r.Get("/reports/receipts-and-payments", s.receiptsPayments)
		r.Get("/reports/general-ledger", s.generalLedger)
		r.Get("/reports/cash-book", s.cashBook)
		r.Get("/reports/bank-book", s.bankBook)
		r.Get("/reports/member-dues", s.memberDues)
		r.Get("/reports/member-ledger/{flatID}", s.memberLedger)

		// Maintenance billing
		r.Post("/maintenance/generate-bills", s.generateBills)
		r.Get("/maintenance/bills", s.listBills)
		r.Delete("/maintenance/bills", s.deleteBills)

		// Flats
		r.Post("/flats", s.createFlat)
		r.Get("/flats", s.listFlats)
		r.Get("/flats/{id}", s.getFlat)
		r.Put("/flats/{id}", s.updateFlat)
		r.Delete("/flats/{id}", s.deleteFlat)

		// Water expenses
		r.Post("/water-expenses", s.createWaterExpense)
		r.Get("/water-expenses", s.listWaterExpenses)
		r.Delete("/water-expenses/{id}", s.deleteWaterExpense)

		// Society settings
		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.updateSettings)
	})

	return s
}

func (s *Server) ListenAndServe() error {
	log.Printf("societyledger server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) Serve(ln net.Listener) error {
	log.Printf("societyledger server listening on %s", ln.Addr())
	return http.Serve(ln, s.router)
}

func (s *Server) Handler() http.Handler {
	return s.router
}
