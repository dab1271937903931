package services

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"binsmart-backend/internal/apperr"
	"binsmart-backend/internal/models"
)

// memStore is an in-memory Store. Transactions lock per statement and undo
// their own writes when fn fails.
type memStore struct {
	mu            sync.Mutex
	users         map[string]*models.User
	bins          map[string]*models.Bin
	rewards       map[string]*models.Reward
	scans         []models.WasteScan
	redemptions   []models.RewardRedemption
	notifications []models.Notification
	complaints    map[string]*models.Complaint
	ratings       map[string]models.Rating

	// failWith makes every read and write return this error
	failWith error
	// failNotifications only breaks InsertNotification
	failNotifications error
}

var (
	_ Store         = (*memStore)(nil)
	_ FeedbackStore = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*models.User{},
		bins:       map[string]*models.Bin{},
		rewards:    map[string]*models.Reward{},
		complaints: map[string]*models.Complaint{},
		ratings:    map[string]models.Rating{},
	}
}

func (m *memStore) addUser(id string, points int, region string, lastActivity time.Time) {
	m.users[id] = &models.User{ID: id, Username: id, Email: id + "@example.com", Role: models.RoleUser, TotalPoints: points, Region: region, LastActivity: lastActivity.Unix()}
}

func (m *memStore) addBin(id, name string, lat, lng float64, level models.CapacityLevel, region string) {
	m.bins[id] = &models.Bin{ID: id, LocationName: name, Latitude: &lat, Longitude: &lng, BinType: "Mixed", CapacityLevel: level, Region: region, IsActive: true}
}

func (m *memStore) addReward(id, name string, points int) {
	m.rewards[id] = &models.Reward{ID: id, Name: name, PointsRequired: points, IsActive: true}
}

func (m *memStore) balance(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].TotalPoints
}

func (m *memStore) notificationsFor(userID string) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (m *memStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user %s not found", id)
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetBin(ctx context.Context, id string) (*models.Bin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	b, ok := m.bins[id]
	if !ok {
		return nil, apperr.NotFound("bin %s not found", id)
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) GetReward(ctx context.Context, id string) (*models.Reward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	r, ok := m.rewards[id]
	if !ok {
		return nil, apperr.NotFound("reward %s not found", id)
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) ListActiveRewards(ctx context.Context) ([]models.Reward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Reward
	for _, r := range m.rewards {
		if r.IsActive {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PointsRequired < out[j].PointsRequired })
	return out, nil
}

func (m *memStore) ListActiveBins(ctx context.Context) ([]models.Bin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Bin
	for _, b := range m.bins {
		if b.IsActive {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListUsersAboveThreshold(ctx context.Context, points int) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.User
	for _, u := range m.users {
		if u.TotalPoints >= points {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) ListScans(ctx context.Context, userID string, limit int) ([]models.WasteScan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WasteScan
	for i := len(m.scans) - 1; i >= 0 && len(out) < limit; i-- {
		if m.scans[i].UserID == userID {
			out = append(out, m.scans[i])
		}
	}
	return out, nil
}

func (m *memStore) CountRecentDisposals(ctx context.Context, binID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	count := 0
	for _, s := range m.scans {
		if s.BinID != nil && *s.BinID == binID && s.ScanDate >= since.Unix() {
			count++
		}
	}
	return count, nil
}

func (m *memStore) ListRedeemedRewardIDs(ctx context.Context, userID string, since time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, r := range m.redemptions {
		if r.UserID == userID && r.RedemptionDate >= since.Unix() && r.Status != models.RedemptionCancelled {
			out = append(out, r.RewardID)
		}
	}
	return out, nil
}

func (m *memStore) HasRecentNotification(ctx context.Context, userID string, key models.NotificationKey, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return false, m.failWith
	}
	for _, n := range m.notifications {
		if n.UserID != userID || n.CreatedAt < since.Unix() {
			continue
		}
		if key.Title != "" && n.Title != key.Title {
			continue
		}
		if key.Type != "" && n.Type != key.Type {
			continue
		}
		if key.Message != "" && n.Message != key.Message {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (m *memStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if m.failNotifications != nil {
		return m.failNotifications
	}
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *memStore) ListInactiveUsers(ctx context.Context, activeSince, noScanSince time.Time) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.LastActivity < activeSince.Unix() || u.TotalPoints <= 0 {
			continue
		}
		recent := false
		for _, s := range m.scans {
			if s.UserID == u.ID && s.ScanDate >= noScanSince.Unix() {
				recent = true
				break
			}
		}
		if !recent {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListBinsAtCapacity(ctx context.Context, levels []models.CapacityLevel) ([]models.Bin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Bin
	for _, b := range m.bins {
		if !b.IsActive {
			continue
		}
		for _, level := range levels {
			if b.CapacityLevel == level {
				out = append(out, *b)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListUsersInRegion(ctx context.Context, region string, activeSince time.Time) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.Region == region && u.LastActivity >= activeSince.Unix() {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListBroadcastTargets(ctx context.Context, region *string, activeSince *time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, u := range m.users {
		if region != nil && u.Region != *region {
			continue
		}
		if activeSince != nil && u.LastActivity < activeSince.Unix() {
			continue
		}
		out = append(out, u.ID)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) InsertComplaint(ctx context.Context, c *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.complaints[c.ID] = &cp
	return nil
}

func (m *memStore) ResolveComplaint(ctx context.Context, id string, at time.Time) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.complaints[id]
	if !ok {
		return nil, apperr.NotFound("complaint %s not found", id)
	}
	resolvedAt := at.Unix()
	c.Status = models.ComplaintResolved
	c.ResolvedAt = &resolvedAt
	cp := *c
	return &cp, nil
}

func (m *memStore) ListComplaints(ctx context.Context, userID *string) ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Complaint
	for _, c := range m.complaints {
		if userID == nil || c.UserID == *userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) UpsertRating(ctx context.Context, r *models.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings[r.UserID+"/"+r.BinID] = *r
	return nil
}

func (m *memStore) InTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	m.mu.Lock()
	failWith := m.failWith
	m.mu.Unlock()
	if failWith != nil {
		return failWith
	}

	tx := &memTx{m: m}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// memTx locks per statement, so concurrent transactions interleave the way
// separate round trips do. Each write records how to undo itself.
type memTx struct {
	m    *memStore
	undo []func()
}

func (t *memTx) lock() {
	runtime.Gosched()
	t.m.mu.Lock()
}

func (t *memTx) rollback() {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
}

func (t *memTx) InsertScan(ctx context.Context, scan *models.WasteScan) error {
	t.lock()
	defer t.m.mu.Unlock()
	if _, ok := t.m.users[scan.UserID]; !ok {
		return apperr.NotFound("user %s not found", scan.UserID)
	}
	t.m.scans = append(t.m.scans, *scan)
	id := scan.ID
	t.undo = append(t.undo, func() {
		for i, s := range t.m.scans {
			if s.ID == id {
				t.m.scans = append(t.m.scans[:i], t.m.scans[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (t *memTx) InsertRedemption(ctx context.Context, r *models.RewardRedemption) error {
	t.lock()
	defer t.m.mu.Unlock()
	t.m.redemptions = append(t.m.redemptions, *r)
	id := r.ID
	t.undo = append(t.undo, func() {
		for i, red := range t.m.redemptions {
			if red.ID == id {
				t.m.redemptions = append(t.m.redemptions[:i], t.m.redemptions[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (t *memTx) IncrementBinDisposals(ctx context.Context, binID string) error {
	t.lock()
	defer t.m.mu.Unlock()
	b, ok := t.m.bins[binID]
	if !ok {
		return apperr.NotFound("bin %s not found", binID)
	}
	b.TotalDisposals++
	t.undo = append(t.undo, func() { b.TotalDisposals-- })
	return nil
}

// AdjustBalance applies the guard and the update under one lock, like the
// single UPDATE ... WHERE total_points + delta >= 0 statement
func (t *memTx) AdjustBalance(ctx context.Context, userID string, delta int, requireFunds bool, at time.Time) (int, int64, error) {
	t.lock()
	defer t.m.mu.Unlock()
	u, ok := t.m.users[userID]
	if !ok {
		return 0, 0, nil
	}
	if requireFunds && u.TotalPoints+delta < 0 {
		return 0, 0, nil
	}
	previousActivity := u.LastActivity
	u.TotalPoints += delta
	u.LastActivity = at.Unix()
	t.undo = append(t.undo, func() {
		u.TotalPoints -= delta
		u.LastActivity = previousActivity
	})
	return u.TotalPoints, 1, nil
}

func (t *memTx) CurrentBalance(ctx context.Context, userID string) (int, error) {
	t.lock()
	defer t.m.mu.Unlock()
	u, ok := t.m.users[userID]
	if !ok {
		return 0, apperr.NotFound("user %s not found", userID)
	}
	return u.TotalPoints, nil
}

// recordingDeliverer captures dispatched notifications
type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []models.Notification
}

func (d *recordingDeliverer) Deliver(ctx context.Context, n models.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, n)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
