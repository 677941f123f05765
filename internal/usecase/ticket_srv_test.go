package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"seminar-ticketing/internal/data/repository"
	"seminar-ticketing/internal/dto/request"
	"seminar-ticketing/pkg/clock"
	"seminar-ticketing/pkg/qr"
	"seminar-ticketing/pkg/utils"

	"go.uber.org/zap"
)

var bookedAt = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestTicketService(store *fakeStore, renderer *fakeRenderer, timeout time.Duration) TicketService {
	cfg := &utils.Config{Ticket: utils.TicketConfig{QRDir: "qr_codes", BookingTimeout: timeout}}
	deps := Deps{
		Clock:    clock.NewStepping(bookedAt, time.Millisecond),
		Encoder:  qr.NewEncoder("qr_codes"),
		Renderer: renderer,
		PNG:      qr.NewFileRenderer(64).PNG,
	}
	return NewTicketService(store.repository(), cfg, deps, zap.NewNop())
}

func bookReq(seminarID int64, name, email string) *request.BookTicketRequest {
	return &request.BookTicketRequest{SeminarID: seminarID, StudentName: name, StudentEmail: email}
}

func TestBook_Success(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	renderer := newFakeRenderer()
	semID := store.addSeminar("Go concurrency", 2, 0)
	svc := newTestTicketService(store, renderer, 0)

	receipt, err := svc.Book(context.Background(), bookReq(semID, "Alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if receipt.TicketID == 0 || receipt.StudentID == 0 {
		t.Fatalf("expected generated ids, got %+v", receipt)
	}
	if receipt.SeminarID != semID {
		t.Fatalf("expected seminar %d, got %d", semID, receipt.SeminarID)
	}

	if got := store.seminar(semID).RegisteredCount; got != 1 {
		t.Fatalf("expected registered count 1, got %d", got)
	}

	tickets := store.ticketsFor(semID)
	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets))
	}
	ticket := tickets[0]
	if ticket.ID != receipt.TicketID || ticket.StudentID != receipt.StudentID || !ticket.Active {
		t.Fatalf("ticket does not match receipt: %+v vs %+v", ticket, receipt)
	}
	if ticket.QRPath != receipt.QRPath {
		t.Fatalf("expected qr path %q, got %q", receipt.QRPath, ticket.QRPath)
	}

	content, ok := renderer.files()[receipt.QRPath]
	if !ok {
		t.Fatalf("expected qr image rendered at %s", receipt.QRPath)
	}
	if content != ticket.QRContent {
		t.Fatalf("rendered content %q differs from stored %q", content, ticket.QRContent)
	}

	payload, err := qr.Parse(content)
	if err != nil {
		t.Fatalf("parse content: %v", err)
	}
	if payload.SeminarID != semID || payload.StudentID != receipt.StudentID {
		t.Fatalf("unexpected payload %+v", payload)
	}
	_, wantPath := qr.NewEncoder("qr_codes").Encode(semID, receipt.StudentID, payload.IssuedAt)
	if wantPath != receipt.QRPath {
		t.Fatalf("expected path %q, got %q", wantPath, receipt.QRPath)
	}
}

func TestBook_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		capacity  int
		booked    int
		seminarID func(existing int64) int64
		req       func(id int64) *request.BookTicketRequest
		wantErr   error
	}{
		{
			name:      "unknown seminar",
			capacity:  5,
			seminarID: func(int64) int64 { return 999 },
			req:       func(id int64) *request.BookTicketRequest { return bookReq(id, "A", "a@x.com") },
			wantErr:   ErrSeminarNotFound,
		},
		{
			name:      "full seminar",
			capacity:  1,
			booked:    1,
			seminarID: func(id int64) int64 { return id },
			req:       func(id int64) *request.BookTicketRequest { return bookReq(id, "A", "a@x.com") },
			wantErr:   ErrSeminarFull,
		},
		{
			name:      "invalid email",
			capacity:  5,
			seminarID: func(id int64) int64 { return id },
			req:       func(id int64) *request.BookTicketRequest { return bookReq(id, "A", "not-an-email") },
			wantErr:   ErrValidation,
		},
		{
			name:      "missing name",
			capacity:  5,
			seminarID: func(id int64) int64 { return id },
			req:       func(id int64) *request.BookTicketRequest { return bookReq(id, "", "a@x.com") },
			wantErr:   ErrValidation,
		},
		{
			name:      "blank name",
			capacity:  5,
			seminarID: func(id int64) int64 { return id },
			req:       func(id int64) *request.BookTicketRequest { return bookReq(id, "   ", "a@x.com") },
			wantErr:   ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			renderer := newFakeRenderer()
			existing := store.addSeminar("Seminar", tt.capacity, tt.booked)
			svc := newTestTicketService(store, renderer, 0)

			_, err := svc.Book(context.Background(), tt.req(tt.seminarID(existing)))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			students, tickets := store.counts()
			if students != 0 || tickets != 0 {
				t.Fatalf("expected no side effects, got %d students %d tickets", students, tickets)
			}
			if got := store.seminar(existing).RegisteredCount; got != tt.booked {
				t.Fatalf("expected registered count %d, got %d", tt.booked, got)
			}
			if len(renderer.files()) != 0 {
				t.Fatalf("expected no qr image")
			}
		})
	}
}

func TestBook_EncodingFailureRollsBack(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	renderer := newFakeRenderer()
	renderer.err = errors.New("disk full")
	semID := store.addSeminar("Seminar", 3, 0)
	svc := newTestTicketService(store, renderer, 0)

	_, err := svc.Book(context.Background(), bookReq(semID, "A", "a@x.com"))
	if !errors.Is(err, ErrEncodingFailed) {
		t.Fatalf("expected ErrEncodingFailed, got %v", err)
	}

	students, tickets := store.counts()
	if students != 0 || tickets != 0 {
		t.Fatalf("expected rollback, got %d students %d tickets", students, tickets)
	}
	if got := store.seminar(semID).RegisteredCount; got != 0 {
		t.Fatalf("expected registered count 0, got %d", got)
	}
}

func TestBook_PersistFailureRemovesQRImage(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.failTicketCreate = errors.New("connection reset")
	renderer := newFakeRenderer()
	semID := store.addSeminar("Seminar", 3, 0)
	svc := newTestTicketService(store, renderer, 0)

	if _, err := svc.Book(context.Background(), bookReq(semID, "A", "a@x.com")); err == nil {
		t.Fatalf("expected error")
	}

	if len(renderer.files()) != 0 {
		t.Fatalf("expected orphaned qr image removed, still have %v", renderer.files())
	}
	if len(renderer.removed) != 1 {
		t.Fatalf("expected one removal, got %v", renderer.removed)
	}
	students, tickets := store.counts()
	if students != 0 || tickets != 0 {
		t.Fatalf("expected rollback, got %d students %d tickets", students, tickets)
	}
}

func TestBook_QRPathCollisionKeepsCommittedImage(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	semID := store.addSeminar("Seminar", 3, 0)
	dir := t.TempDir()
	renderer := qr.NewFileRenderer(64)
	cfg := &utils.Config{Ticket: utils.TicketConfig{QRDir: dir}}
	svc := NewTicketService(store.repository(), cfg, Deps{
		Clock:    clock.NewFixed(bookedAt),
		Encoder:  qr.NewEncoder(dir),
		Renderer: renderer,
		PNG:      renderer.PNG,
	}, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Book(ctx, bookReq(semID, "A", "a@x.com"))
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	before, err := os.ReadFile(first.QRPath)
	if err != nil {
		t.Fatalf("read committed image: %v", err)
	}

	// same student, same seminar, same instant: same image path
	if _, err := svc.Book(ctx, bookReq(semID, "A", "a@x.com")); !errors.Is(err, ErrEncodingFailed) {
		t.Fatalf("expected ErrEncodingFailed, got %v", err)
	}

	after, err := os.ReadFile(first.QRPath)
	if err != nil {
		t.Fatalf("committed ticket %d lost its qr image: %v", first.TicketID, err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("committed ticket %d qr image was overwritten", first.TicketID)
	}
	if _, tickets := store.counts(); tickets != 1 {
		t.Fatalf("expected 1 ticket, got %d", tickets)
	}
	if got := store.seminar(semID).RegisteredCount; got != 1 {
		t.Fatalf("expected registered count 1, got %d", got)
	}
}

func TestBook_CommitFailureKeepsQRImage(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.failCommit = errors.New("connection reset")
	renderer := newFakeRenderer()
	semID := store.addSeminar("Seminar", 3, 0)
	svc := newTestTicketService(store, renderer, 0)

	_, err := svc.Book(context.Background(), bookReq(semID, "A", "a@x.com"))
	if !errors.Is(err, repository.ErrCommitFailed) {
		t.Fatalf("expected ErrCommitFailed, got %v", err)
	}
	if len(renderer.removed) != 0 {
		t.Fatalf("expected qr image kept when commit outcome is unknown, removed %v", renderer.removed)
	}
	if len(renderer.files()) != 1 {
		t.Fatalf("expected 1 qr image, got %v", renderer.files())
	}
}

func TestBook_EmailMatchIsCaseSensitive(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	semID := store.addSeminar("Seminar", 2, 0)
	svc := newTestTicketService(store, newFakeRenderer(), 0)
	ctx := context.Background()

	lower, err := svc.Book(ctx, bookReq(semID, "A", "a@x.com"))
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	upper, err := svc.Book(ctx, bookReq(semID, "A", "A@x.com"))
	if err != nil {
		t.Fatalf("second booking: %v", err)
	}
	if lower.StudentID == upper.StudentID {
		t.Fatalf("expected distinct students for differently cased emails")
	}
	if students, _ := store.counts(); students != 2 {
		t.Fatalf("expected 2 students, got %d", students)
	}
}

func TestBook_SameEmailReusesStudent(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	semID := store.addSeminar("Seminar", 2, 0)
	svc := newTestTicketService(store, newFakeRenderer(), 0)
	ctx := context.Background()

	first, err := svc.Book(ctx, bookReq(semID, "A", "a@x.com"))
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	second, err := svc.Book(ctx, bookReq(semID, "A", " a@x.com"))
	if err != nil {
		t.Fatalf("second booking: %v", err)
	}

	if first.StudentID != second.StudentID {
		t.Fatalf("expected same student, got %d and %d", first.StudentID, second.StudentID)
	}
	if first.TicketID == second.TicketID || first.QRPath == second.QRPath {
		t.Fatalf("expected distinct tickets, got %+v and %+v", first, second)
	}
	if got := store.seminar(semID).RegisteredCount; got != 2 {
		t.Fatalf("expected registered count 2, got %d", got)
	}
	if students, _ := store.counts(); students != 1 {
		t.Fatalf("expected 1 student, got %d", students)
	}
}

func TestBook_ExistingStudentAcrossSeminars(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	studentID := store.addStudent("Alice", "alice@example.com")
	semA := store.addSeminar("A", 1, 0)
	semB := store.addSeminar("B", 1, 0)
	svc := newTestTicketService(store, newFakeRenderer(), 0)

	for _, semID := range []int64{semA, semB} {
		receipt, err := svc.Book(context.Background(), bookReq(semID, "Someone Else", "alice@example.com"))
		if err != nil {
			t.Fatalf("book seminar %d: %v", semID, err)
		}
		if receipt.StudentID != studentID {
			t.Fatalf("expected existing student %d, got %d", studentID, receipt.StudentID)
		}
	}
}

func TestBook_TwoConcurrentForLastSlot(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	semID := store.addSeminar("Seminar", 1, 0)
	svc := newTestTicketService(store, newFakeRenderer(), 0)

	reqs := []*request.BookTicketRequest{
		bookReq(semID, "A", "a@x.com"),
		bookReq(semID, "B", "b@x.com"),
	}
	errs := make([]error, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), req)
		}()
	}
	wg.Wait()

	var ok, full int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrSeminarFull):
			full++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if ok != 1 || full != 1 {
		t.Fatalf("expected 1 success and 1 full, got %d and %d", ok, full)
	}
	if got := store.seminar(semID).RegisteredCount; got != 1 {
		t.Fatalf("expected registered count 1, got %d", got)
	}
}

func TestBook_ConcurrentAttemptsNeverExceedCapacity(t *testing.T) {
	t.Parallel()

	const (
		capacity = 5
		attempts = 40
	)

	store := newFakeStore()
	renderer := newFakeRenderer()
	semID := store.addSeminar("Popular", capacity, 0)
	other := store.addSeminar("Other", attempts, 0)
	svc := newTestTicketService(store, renderer, 0)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		full    int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), bookReq(semID, "S", fmt.Sprintf("s%d@x.com", i)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrSeminarFull):
				full++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
		// traffic on a different seminar must not be blocked or affected
		go func() {
			defer wg.Done()
			if _, err := svc.Book(context.Background(), bookReq(other, "O", fmt.Sprintf("o%d@x.com", i))); err != nil {
				t.Errorf("other seminar: %v", err)
			}
		}()
	}
	wg.Wait()

	if success != capacity || full != attempts-capacity {
		t.Fatalf("expected %d success and %d full, got %d and %d", capacity, attempts-capacity, success, full)
	}
	if got := store.seminar(semID).RegisteredCount; got != capacity {
		t.Fatalf("expected registered count %d, got %d", capacity, got)
	}

	tickets := store.ticketsFor(semID)
	if len(tickets) != capacity {
		t.Fatalf("expected %d tickets, got %d", capacity, len(tickets))
	}
	seen := make(map[string]bool)
	for _, ticket := range tickets {
		if seen[ticket.QRContent] {
			t.Fatalf("duplicate qr content %q", ticket.QRContent)
		}
		seen[ticket.QRContent] = true
	}

	if got := store.seminar(other).RegisteredCount; got != attempts {
		t.Fatalf("expected other seminar count %d, got %d", attempts, got)
	}
}

func TestBook_DeadlineWhileWaitingForLock(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	semID := store.addSeminar("Seminar", 5, 0)
	svc := newTestTicketService(store, newFakeRenderer(), 50*time.Millisecond)
	repo := store.repository()

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = repo.Tx.WithTx(context.Background(), func(ctx context.Context) error {
			if _, err := repo.Seminar.LockByID(ctx, semID); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	_, err := svc.Book(context.Background(), bookReq(semID, "A", "a@x.com"))
	close(release)
	<-done

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	students, tickets := store.counts()
	if students != 0 || tickets != 0 {
		t.Fatalf("expected no side effects, got %d students %d tickets", students, tickets)
	}

	// the lock is free again once the holder commits
	if _, err := svc.Book(context.Background(), bookReq(semID, "A", "a@x.com")); err != nil {
		t.Fatalf("expected booking to succeed after release, got %v", err)
	}
}

func TestVerifyTicket(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	semID := store.addSeminar("Seminar", 5, 0)
	studentID := store.addStudent("A", "a@x.com")
	content, _ := qr.NewEncoder("").Encode(semID, studentID, bookedAt)
	ticketID := store.addTicket(semID, studentID, content, true)

	inactive, _ := qr.NewEncoder("").Encode(semID, studentID, bookedAt.Add(time.Second))
	store.addTicket(semID, studentID, inactive, false)

	unknown, _ := qr.NewEncoder("").Encode(semID, studentID, bookedAt.Add(time.Hour))

	svc := newTestTicketService(store, newFakeRenderer(), 0)

	tests := []struct {
		name      string
		req       request.VerifyTicketRequest
		wantValid bool
		wantMsg   string
	}{
		{"valid", request.VerifyTicketRequest{QRContent: content}, true, "Ticket is valid"},
		{"valid for seminar", request.VerifyTicketRequest{QRContent: content, SeminarID: semID}, true, "Ticket is valid"},
		{"other seminar", request.VerifyTicketRequest{QRContent: content, SeminarID: semID + 100}, false, "Ticket belongs to another seminar"},
		{"inactive", request.VerifyTicketRequest{QRContent: inactive}, false, "Ticket is not active"},
		{"unknown", request.VerifyTicketRequest{QRContent: unknown}, false, "Ticket not found"},
		{"malformed", request.VerifyTicketRequest{QRContent: "hello"}, false, "Malformed QR content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.VerifyTicket(context.Background(), &tt.req)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.Valid != tt.wantValid || got.Message != tt.wantMsg {
				t.Fatalf("expected valid=%v %q, got valid=%v %q", tt.wantValid, tt.wantMsg, got.Valid, got.Message)
			}
			if tt.wantValid && got.TicketID != ticketID {
				t.Fatalf("expected ticket %d, got %d", ticketID, got.TicketID)
			}
		})
	}
}

func TestGetTicket_NotFound(t *testing.T) {
	t.Parallel()

	svc := newTestTicketService(newFakeStore(), newFakeRenderer(), 0)
	if _, err := svc.GetTicket(context.Background(), 42); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestGetStudentTickets(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	semID := store.addSeminar("Seminar", 5, 0)
	svc := newTestTicketService(store, newFakeRenderer(), 0)
	ctx := context.Background()

	var studentID int64
	for i := 0; i < 3; i++ {
		receipt, err := svc.Book(ctx, bookReq(semID, "A", "a@x.com"))
		if err != nil {
			t.Fatalf("book: %v", err)
		}
		studentID = receipt.StudentID
	}

	page, err := svc.GetStudentTickets(ctx, studentID, &request.PaginatedRequest{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(page.Data) != 1 || page.Pagination.Total != 3 || page.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected page %+v", page)
	}

	if _, err := svc.GetStudentTickets(ctx, 999, &request.PaginatedRequest{Page: 1, PerPage: 10}); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestTicketPDF(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	semID := store.addSeminar("Distributed Systems 101", 5, 0)
	svc := newTestTicketService(store, newFakeRenderer(), 0)

	receipt, err := svc.Book(context.Background(), bookReq(semID, "Alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	doc, name, err := svc.TicketPDF(context.Background(), receipt.TicketID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if name != fmt.Sprintf("ticket-%d.pdf", receipt.TicketID) {
		t.Fatalf("unexpected file name %q", name)
	}
	if len(doc) < 5 || string(doc[:5]) != "%PDF-" {
		t.Fatalf("expected pdf document")
	}

	if _, _, err := svc.TicketPDF(context.Background(), 999); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}
