package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/parking-reservation/internal/config"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/queue"
	"github.com/iliyamo/parking-reservation/internal/repository"
)

var kst = time.FixedZone("KST", 9*60*60)

type recorder struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
}

func (r *recorder) Publish(_ context.Context, ev queue.ReservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	svc    *ReservationService
	store  *repository.ReservationRepo
	users  *repository.MemoryUserRepo
	events *recorder
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat := config.DefaultCatalog()
	f := &fixture{
		store:  repository.NewReservationRepo(),
		users:  repository.NewMemoryUserRepo(),
		events: &recorder{},
		now:    time.Date(2026, 10, 19, 9, 5, 0, 0, kst),
	}
	ctx := context.Background()
	for _, u := range []model.User{
		{Username: "alice", Role: model.RoleUser},
		{Username: "bob", Role: model.RoleUser},
		{Username: "admin", Role: model.RoleAdmin, Points: 100},
	} {
		if err := f.users.Create(ctx, u); err != nil {
			t.Fatalf("seed %s: %v", u.Username, err)
		}
	}
	f.svc = NewReservationService(
		repository.NewLotRepo(cat.Lots, cat.Locations, cat.DefaultLocation),
		f.store, f.users,
		Options{Location: kst, PendingTTL: 15 * time.Minute, Events: f.events, Now: func() time.Time { return f.now }},
	)
	return f
}

func req(user, lot string, spot, hour, minute, dur int) ReserveRequest {
	return ReserveRequest{User: user, LotID: lot, SpotID: spot, Date: "2026-10-19", Hour: hour, Minute: minute, DurationMin: dur}
}

func (f *fixture) reserve(t *testing.T, r ReserveRequest) model.Reservation {
	t.Helper()
	res, err := f.svc.Reserve(context.Background(), r)
	if err != nil {
		t.Fatalf("reserve %+v: %v", r, err)
	}
	return res
}

func (f *fixture) balance(t *testing.T, user string) int {
	t.Helper()
	u, err := f.users.Get(context.Background(), user)
	if err != nil {
		t.Fatalf("get %s: %v", user, err)
	}
	return u.Points
}

func TestReserveSpotTaken(t *testing.T) {
	f := newFixture(t)
	f.reserve(t, req("alice", "gangnam", 1, 10, 0, 30))

	_, err := f.svc.Reserve(context.Background(), req("bob", "gangnam", 1, 10, 15, 30))
	if !errors.Is(err, ErrSpotTaken) {
		t.Fatalf("expected spot_taken, got %v", err)
	}
	// same spot id in another lot is a different spot
	f.reserve(t, req("bob", "hongdae", 1, 10, 15, 30))
}

func TestReserveUserOverlap(t *testing.T) {
	f := newFixture(t)
	f.reserve(t, req("alice", "gangnam", 1, 10, 0, 30))

	_, err := f.svc.Reserve(context.Background(), req("alice", "gangnam", 2, 10, 10, 10))
	if !errors.Is(err, ErrUserOverlap) {
		t.Fatalf("expected user_overlap, got %v", err)
	}
	_, err = f.svc.Reserve(context.Background(), req("alice", "seoul_station", 3, 10, 10, 10))
	if !errors.Is(err, ErrUserOverlap) {
		t.Fatalf("expected user_overlap across lots, got %v", err)
	}
}

func TestReserveUserOverlapReportedBeforeSpot(t *testing.T) {
	f := newFixture(t)
	f.reserve(t, req("alice", "gangnam", 1, 10, 0, 60))

	_, err := f.svc.Reserve(context.Background(), req("alice", "gangnam", 1, 10, 30, 30))
	if !errors.Is(err, ErrUserOverlap) {
		t.Fatalf("expected user_overlap first, got %v", err)
	}
}

func TestReserveTouchingIntervals(t *testing.T) {
	f := newFixture(t)
	f.reserve(t, req("alice", "gangnam", 1, 10, 0, 30))
	f.reserve(t, req("bob", "gangnam", 1, 10, 30, 30))
	f.reserve(t, req("alice", "gangnam", 2, 10, 30, 30))
}

func TestReserveValidation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		r    ReserveRequest
		want error
	}{
		{"unknown lot", req("alice", "busan", 1, 10, 0, 30), ErrLotNotFound},
		{"unknown spot", req("alice", "gangnam", 99, 10, 0, 30), ErrSpotNotFound},
		{"disabled spot", req("alice", "gangnam", 22, 10, 0, 30), ErrSpotDisabled},
		{"bad date", ReserveRequest{User: "alice", LotID: "gangnam", SpotID: 1, Date: "19/10/2026", Hour: 10, DurationMin: 30}, ErrInvalidTimeFormat},
		{"bad hour", req("alice", "gangnam", 1, 24, 0, 30), ErrInvalidTimeFormat},
		{"zero duration", req("alice", "gangnam", 1, 10, 0, 0), ErrInvalidTimeFormat},
		{"past start", req("alice", "gangnam", 1, 9, 0, 30), ErrPastStartTime},
	}
	for _, tc := range cases {
		if _, err := f.svc.Reserve(context.Background(), tc.r); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if n := len(f.store.ListAll()); n != 0 {
		t.Fatalf("failed reservations must not be stored, found %d", n)
	}
}

func TestReserveRecordsPriceAndPoints(t *testing.T) {
	f := newFixture(t)
	// hongdae: 40/min, traffic 4 -> 40 base, spot 4 density 1 -> +20
	r := f.reserve(t, req("alice", "hongdae", 4, 10, 0, 50))
	if r.OriginalPrice != 2000 || r.ActualPrice != 2000 || r.PointsEarned != 50 {
		t.Fatalf("price/points = %d/%d/%d", r.OriginalPrice, r.ActualPrice, r.PointsEarned)
	}
	if r.Status != model.StatusPending || r.ID == "" || r.End-r.Start != 50*60 {
		t.Fatalf("unexpected record %+v", r)
	}
	if r.CreatedAt != model.At(f.now) {
		t.Fatalf("created_at = %d", r.CreatedAt)
	}
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture(t)
	r := f.reserve(t, req("admin", "hongdae", 4, 10, 0, 50))

	paid, balance, err := f.svc.ConfirmPayment(context.Background(), "admin", r.ID, 30)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if paid.Status != model.StatusPaid || paid.ActualPrice != 1970 || paid.PaidAt == 0 {
		t.Fatalf("paid record = %+v", paid)
	}
	if balance != 100-30+50 || f.balance(t, "admin") != 120 {
		t.Fatalf("balance = %d / %d", balance, f.balance(t, "admin"))
	}
	if _, _, err := f.svc.ConfirmPayment(context.Background(), "admin", r.ID, 0); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("second confirm: expected reservation_not_found, got %v", err)
	}
}

func TestConfirmPaymentPointsAbovePrice(t *testing.T) {
	f := newFixture(t)
	r := f.reserve(t, req("admin", "gangnam", 1, 10, 0, 1))

	paid, balance, err := f.svc.ConfirmPayment(context.Background(), "admin", r.ID, 100)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if paid.ActualPrice != 0 {
		t.Fatalf("actual price must floor at 0, got %d", paid.ActualPrice)
	}
	if balance != paid.PointsEarned {
		t.Fatalf("balance = %d, want %d", balance, paid.PointsEarned)
	}
}

func TestConfirmPaymentInsufficientPoints(t *testing.T) {
	f := newFixture(t)
	r := f.reserve(t, req("alice", "gangnam", 1, 10, 0, 30))

	if _, _, err := f.svc.ConfirmPayment(context.Background(), "alice", r.ID, 1); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected insufficient_points, got %v", err)
	}
	got, _ := f.store.Get(r.ID)
	if got.Status != model.StatusPending || got.ActualPrice != r.OriginalPrice || f.balance(t, "alice") != 0 {
		t.Fatalf("state changed after failed confirm: %+v", got)
	}
	if _, _, err := f.svc.ConfirmPayment(context.Background(), "alice", r.ID, -1); !errors.Is(err, ErrInvalidPoints) {
		t.Fatalf("expected invalid_points, got %v", err)
	}
}

func TestConfirmPaymentNotOwner(t *testing.T) {
	f := newFixture(t)
	r := f.reserve(t, req("alice", "gangnam", 1, 10, 0, 30))
	if _, _, err := f.svc.ConfirmPayment(context.Background(), "bob", r.ID, 0); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("expected reservation_not_found, got %v", err)
	}
	if _, _, err := f.svc.ConfirmPayment(context.Background(), "alice", "nope", 0); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("expected reservation_not_found, got %v", err)
	}
}

func TestConfirmPaymentRechecksConflicts(t *testing.T) {
	f := newFixture(t)
	r := f.reserve(t, req("alice", "gangnam", 1, 10, 0, 30))

	// a record that slipped in behind the pending one
	intruder := model.Reservation{
		ID: "intruder", LotID: "gangnam", User: "bob", SpotID: 1,
		Start: r.Start.Add(10 * time.Minute), End: r.End, Status: model.StatusPaid,
	}
	if err := f.store.Append(intruder); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, _, err := f.svc.ConfirmPayment(context.Background(), "alice", r.ID, 0); !errors.Is(err, ErrSpotTaken) {
		t.Fatalf("expected spot_taken, got %v", err)
	}
	if got, _ := f.store.Get(r.ID); got.Status != model.StatusPending {
		t.Fatalf("record changed after conflict: %+v", got)
	}

	mine := model.Reservation{
		ID: "mine", LotID: "seoul_station", User: "alice", SpotID: 2,
		Start: r.Start, End: r.End, Status: model.StatusPaid,
	}
	_, _ = f.store.Remove("intruder")
	_ = f.store.Append(mine)
	if _, _, err := f.svc.ConfirmPayment(context.Background(), "alice", r.ID, 0); !errors.Is(err, ErrUserOverlap) {
		t.Fatalf("expected user_overlap, got %v", err)
	}
}

func TestCancelPaidRevokesEarnedPoints(t *testing.T) {
	cases := []struct {
		before, after int
	}{
		{120, 70},
		{20, 0},
	}
	for _, tc := range cases {
		f := newFixture(t)
		r := f.reserve(t, req("alice", "hongdae", 4, 10, 0, 50))
		if _, _, err := f.svc.ConfirmPayment(context.Background(), "alice", r.ID, 0); err != nil {
			t.Fatalf("confirm: %v", err)
		}
		_ = f.users.SetPoints(context.Background(), "alice", tc.before)

		if _, err := f.svc.Cancel(context.Background(), "alice", r.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if got := f.balance(t, "alice"); got != tc.after {
			t.Fatalf("balance %d -> %d, want %d", tc.before, got, tc.after)
		}
		if _, err := f.store.Get(r.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("cancelled reservation still stored")
		}
	}
}

func TestCancelPendingKeepsBalance(t *testing.T) {
	f := newFixture(t)
	r := f.reserve(t, req("admin", "gangnam", 1, 10, 0, 30))
	if _, err := f.svc.Cancel(context.Background(), "admin", r.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if f.balance(t, "admin") != 100 {
		t.Fatalf("pending cancel must not touch the balance")
	}
	// the slot is free again
	f.reserve(t, req("bob", "gangnam", 1, 10, 0, 30))
}

func TestCancelErrors(t *testing.T) {
	f := newFixture(t)
	r := f.reserve(t, req("alice", "gangnam", 1, 10, 0, 30))

	if _, err := f.svc.Cancel(context.Background(), "bob", r.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), "alice", "nope"); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("expected reservation_not_found, got %v", err)
	}
	f.now = time.Date(2026, 10, 19, 10, 0, 0, 0, kst)
	if _, err := f.svc.Cancel(context.Background(), "alice", r.ID); !errors.Is(err, ErrCannotCancelStarted) {
		t.Fatalf("expected cannot_cancel_started, got %v", err)
	}
}

func TestPendingExpiry(t *testing.T) {
	f := newFixture(t)
	r := f.reserve(t, req("alice", "gangnam", 1, 10, 0, 30))
	kept := f.reserve(t, req("bob", "gangnam", 2, 10, 0, 30))
	if _, _, err := f.svc.ConfirmPayment(context.Background(), "bob", kept.ID, 0); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	f.now = f.now.Add(15 * time.Minute)
	if _, _, err := f.svc.ConfirmPayment(context.Background(), "alice", r.ID, 0); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("expired hold: expected reservation_not_found, got %v", err)
	}
	// an expired hold no longer blocks the spot, even before the sweep
	other := f.reserve(t, req("admin", "gangnam", 1, 10, 0, 30))

	if n := f.svc.SweepExpiredPending(context.Background()); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if _, err := f.store.Get(r.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expired reservation still stored")
	}
	for _, id := range []string{kept.ID, other.ID} {
		if _, err := f.store.Get(id); err != nil {
			t.Fatalf("sweep removed %s: %v", id, err)
		}
	}
	if n := f.svc.SweepExpiredPending(context.Background()); n != 0 {
		t.Fatalf("second sweep removed %d", n)
	}
}

func TestLifecycleEvents(t *testing.T) {
	f := newFixture(t)
	a := f.reserve(t, req("admin", "gangnam", 1, 10, 0, 30))
	_, _, _ = f.svc.ConfirmPayment(context.Background(), "admin", a.ID, 0)
	_, _ = f.svc.Cancel(context.Background(), "admin", a.ID)
	f.reserve(t, req("alice", "gangnam", 2, 11, 0, 30))
	f.now = f.now.Add(time.Hour)
	f.svc.SweepExpiredPending(context.Background())

	want := []string{queue.EventCreated, queue.EventConfirmed, queue.EventCancelled, queue.EventCreated, queue.EventExpired}
	got := f.events.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestSpotStatus(t *testing.T) {
	f := newFixture(t)
	// now 09:05 -> first boundary 09:30
	f.reserve(t, req("alice", "gangnam", 3, 9, 30, 60))

	st, err := f.svc.SpotStatus("gangnam", 3)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Occupied || st.NextAvailable == nil || !st.NextAvailable.Equal(time.Date(2026, 10, 19, 10, 30, 0, 0, kst)) {
		t.Fatalf("status = %+v", st)
	}
	if len(st.Today) != 1 {
		t.Fatalf("today = %d reservations", len(st.Today))
	}
	if _, err := f.svc.SpotStatus("busan", 1); !errors.Is(err, ErrLotNotFound) {
		t.Fatalf("expected lot_not_found, got %v", err)
	}
	if _, err := f.svc.SpotStatus("gangnam", 0); !errors.Is(err, ErrSpotNotFound) {
		t.Fatalf("expected spot_not_found, got %v", err)
	}
}

func TestLotOverviewSearchEstimate(t *testing.T) {
	f := newFixture(t)
	f.reserve(t, req("alice", "hongdae", 2, 9, 30, 30))

	ov, err := f.svc.LotOverview("hongdae")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(ov.Spots) != 5 || ov.Spots[1].State != "unavailable" || ov.Spots[0].State != "available" {
		t.Fatalf("overview spots = %+v", ov.Spots)
	}
	// traffic 4 -> 40/h, average density of 2,3,2,1,2 is 2 -> +0
	if ov.EstimatedPointsPerHour != 40 {
		t.Fatalf("points/hour = %d", ov.EstimatedPointsPerHour)
	}

	res := f.svc.Search("b")
	if !res.Found || res.Location.Key != "B" || len(res.Lots) != 2 {
		t.Fatalf("search = %+v", res)
	}
	res = f.svc.Search("nowhere")
	if res.Found || res.Location.Key != "Seoul" || len(res.Lots) != 3 {
		t.Fatalf("fallback search = %+v", res)
	}

	est, err := f.svc.Estimate("gangnam", 1, 30)
	if err != nil || est.Price != 1500 || est.Points != 40 {
		t.Fatalf("estimate = %+v, %v", est, err)
	}
	if _, err := f.svc.Estimate("busan", 1, 30); !errors.Is(err, ErrLotNotFound) {
		t.Fatalf("expected lot_not_found, got %v", err)
	}
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	f.reserve(t, req("alice", "seoul_station", 1, 12, 0, 30))
	f.reserve(t, req("alice", "gangnam", 1, 10, 0, 30))
	f.reserve(t, req("bob", "gangnam", 2, 11, 0, 30))

	mine, points, err := f.svc.ListForUser(context.Background(), "alice")
	if err != nil || points != 0 || len(mine) != 2 || mine[0].LotID != "gangnam" {
		t.Fatalf("mine = %+v, %d, %v", mine, points, err)
	}
	all := f.svc.ListAll()
	if len(all) != 3 || all[0].LotID != "gangnam" || all[2].LotID != "seoul_station" {
		t.Fatalf("all = %+v", all)
	}
}

func TestConcurrentReserveSameSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := make([]string, 20)
	for i := range users {
		users[i] = "racer" + string(rune('a'+i))
		_ = f.users.Create(ctx, model.User{Username: users[i], Role: model.RoleUser})
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, taken := 0, 0
	for _, u := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, err := f.svc.Reserve(ctx, req(u, "gangnam", 5, 10, 0, 30))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrSpotTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(u)
	}
	wg.Wait()
	if wins != 1 || taken != len(users)-1 {
		t.Fatalf("wins=%d taken=%d", wins, taken)
	}
	if f.svc.userLocks.size() != 0 || f.svc.lotLocks.size() != 0 {
		t.Fatalf("lock table not drained")
	}
}

func TestConcurrentReserveSameUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lots := []struct {
		lot  string
		spot int
	}{{"gangnam", 1}, {"hongdae", 1}, {"seoul_station", 1}, {"gangnam", 2}, {"hongdae", 2}}

	var wg sync.WaitGroup
	errs := make(chan error, len(lots))
	for _, l := range lots {
		wg.Add(1)
		go func(lot string, spot int) {
			defer wg.Done()
			_, err := f.svc.Reserve(ctx, req("alice", lot, spot, 10, 0, 30))
			errs <- err
		}(l.lot, l.spot)
	}
	wg.Wait()
	close(errs)
	wins := 0
	for err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, ErrUserOverlap) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("user got %d overlapping reservations", wins)
	}
}

func TestParseStartTime(t *testing.T) {
	got, err := ParseStartTime("2026-10-19", 7, 5, kst)
	if err != nil || !got.Equal(time.Date(2026, 10, 19, 7, 5, 0, 0, kst)) {
		t.Fatalf("ParseStartTime = %v, %v", got, err)
	}
	got, err = ParseStartTime("2026-1-5", 10, 0, kst)
	if err != nil || !got.Equal(time.Date(2026, 1, 5, 10, 0, 0, 0, kst)) {
		t.Fatalf("unpadded date: ParseStartTime = %v, %v", got, err)
	}
	for _, bad := range []struct {
		date string
		h, m int
	}{{"2026-13-01", 10, 0}, {"26-10-19", 10, 0}, {"", 10, 0}, {"2026-10-19", -1, 0}, {"2026-10-19", 10, 60}} {
		if _, err := ParseStartTime(bad.date, bad.h, bad.m, kst); !errors.Is(err, ErrInvalidTimeFormat) {
			t.Fatalf("ParseStartTime(%q,%d,%d): expected invalid_time_format, got %v", bad.date, bad.h, bad.m, err)
		}
	}
}

func TestKind(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), ErrSpotTaken)
	if Kind(wrapped) != ErrSpotTaken {
		t.Fatalf("Kind did not unwrap")
	}
	if Kind(errors.New("boom")) != nil {
		t.Fatalf("unexpected kind for plain error")
	}
}

func TestReserveDurationBounds(t *testing.T) {
	f := newFixture(t)
	for _, dur := range []int{200_000_000, MaxDurationMin + 1, -30} {
		if _, err := f.svc.Reserve(context.Background(), req("alice", "gangnam", 1, 10, 0, dur)); !errors.Is(err, ErrInvalidTimeFormat) {
			t.Fatalf("duration %d: expected invalid_time_format, got %v", dur, err)
		}
		if _, err := f.svc.Estimate("gangnam", 1, dur); !errors.Is(err, ErrInvalidTimeFormat) {
			t.Fatalf("estimate %d: expected invalid_time_format, got %v", dur, err)
		}
	}
	if n := len(f.store.ListAll()); n != 0 {
		t.Fatalf("rejected reservations must not be stored, found %d", n)
	}

	r := f.reserve(t, req("alice", "gangnam", 1, 10, 0, MaxDurationMin))
	if r.End <= r.Start || r.DurationMinutes() != MaxDurationMin {
		t.Fatalf("day-long reservation = [%d, %d)", r.Start, r.End)
	}
	if _, err := f.svc.Reserve(context.Background(), req("bob", "gangnam", 1, 11, 0, 30)); !errors.Is(err, ErrSpotTaken) {
		t.Fatalf("expected spot_taken inside a day-long reservation, got %v", err)
	}
}

// failingUsers wraps the memory store and can refuse balance writes.
type failingUsers struct {
	*repository.MemoryUserRepo
	failSet bool
}

var errStoreDown = errors.New("store down")

func (u *failingUsers) SetPoints(ctx context.Context, username string, points int) error {
	if u.failSet {
		return errStoreDown
	}
	return u.MemoryUserRepo.SetPoints(ctx, username, points)
}

func (f *fixture) withFailingUsers() *failingUsers {
	users := &failingUsers{MemoryUserRepo: f.users}
	cat := config.DefaultCatalog()
	f.svc = NewReservationService(
		repository.NewLotRepo(cat.Lots, cat.Locations, cat.DefaultLocation),
		f.store, users,
		Options{Location: kst, PendingTTL: 15 * time.Minute, Events: f.events, Now: func() time.Time { return f.now }},
	)
	return users
}

func TestConfirmPaymentBalanceFailureKeepsPending(t *testing.T) {
	f := newFixture(t)
	users := f.withFailingUsers()
	r := f.reserve(t, req("alice", "gangnam", 1, 10, 0, 60))

	users.failSet = true
	if _, _, err := f.svc.ConfirmPayment(context.Background(), "alice", r.ID, 0); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	got, err := f.store.Get(r.ID)
	if err != nil || got.Status != model.StatusPending {
		t.Fatalf("reservation after failed confirm = %+v, %v", got, err)
	}
	if b := f.balance(t, "alice"); b != 0 {
		t.Fatalf("balance = %d, want 0", b)
	}

	users.failSet = false
	if _, balance, err := f.svc.ConfirmPayment(context.Background(), "alice", r.ID, 0); err != nil || balance != 80 {
		t.Fatalf("retry confirm = %d, %v", balance, err)
	}
}

func TestCancelBalanceFailureKeepsReservation(t *testing.T) {
	f := newFixture(t)
	users := f.withFailingUsers()
	r := f.reserve(t, req("alice", "gangnam", 1, 10, 0, 60))
	if _, _, err := f.svc.ConfirmPayment(context.Background(), "alice", r.ID, 0); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	users.failSet = true
	if _, err := f.svc.Cancel(context.Background(), "alice", r.ID); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	got, err := f.store.Get(r.ID)
	if err != nil || got.Status != model.StatusPaid {
		t.Fatalf("reservation after failed cancel = %+v, %v", got, err)
	}
	if b := f.balance(t, "alice"); b != 80 {
		t.Fatalf("balance = %d, want 80", b)
	}

	users.failSet = false
	if _, err := f.svc.Cancel(context.Background(), "alice", r.ID); err != nil {
		t.Fatalf("retry cancel: %v", err)
	}
	if b := f.balance(t, "alice"); b != 0 {
		t.Fatalf("balance after cancel = %d, want 0", b)
	}
}
