package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/openpaddock/motorclub/models"
	"github.com/openpaddock/motorclub/repositories"
	"github.com/openpaddock/motorclub/storage"
)

// fakeUserRepo backs auth and user service tests with an in-memory user set.
// Override the Func fields to script failures.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int

	CreateFunc     func(ctx context.Context, user *models.User) error
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (f *fakeUserRepo) add(user *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == 0 {
		user.ID = f.nextID
		f.nextID++
	}
	cp := *user
	f.users[user.ID] = &cp
	return user
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, user)
	}
	f.mu.Lock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			f.mu.Unlock()
			return repositories.ErrUserEmailConflict
		}
	}
	f.mu.Unlock()
	f.add(user)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.GetByEmailFunc != nil {
		return f.GetByEmailFunc(ctx, email)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeUserRepo) ListByClubID(ctx context.Context, clubID int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, user := range f.users {
		if user.ClubID != nil && *user.ClubID == clubID {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) GetClubIDForUpdate(ctx context.Context, q repositories.SQLExecutor, userID int) (*int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user.ClubID, nil
}

func (f *fakeUserRepo) SetClubID(ctx context.Context, q repositories.SQLExecutor, userID int, clubID *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.ClubID = clubID
	return nil
}

func (f *fakeUserRepo) SetResetToken(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.ResetToken = &token
	user.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (f *fakeUserRepo) UpdatePasswordAndClearResetToken(ctx context.Context, userID int, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.ResetToken = nil
	user.ResetTokenExpiresAt = nil
	return nil
}

type fakeClubRepo struct {
	mu     sync.Mutex
	clubs  map[int]*models.Club
	nextID int

	UpdateFunc func(ctx context.Context, club *models.Club) error
}

func newFakeClubRepo() *fakeClubRepo {
	return &fakeClubRepo{clubs: make(map[int]*models.Club), nextID: 1}
}

func (f *fakeClubRepo) add(club *models.Club) *models.Club {
	f.mu.Lock()
	defer f.mu.Unlock()
	if club.ID == 0 {
		club.ID = f.nextID
		f.nextID++
	}
	cp := *club
	f.clubs[club.ID] = &cp
	return club
}

func (f *fakeClubRepo) Create(ctx context.Context, club *models.Club) error {
	f.mu.Lock()
	for _, existing := range f.clubs {
		if existing.Name == club.Name {
			f.mu.Unlock()
			return repositories.ErrClubNameConflict
		}
	}
	f.mu.Unlock()
	f.add(club)
	return nil
}

func (f *fakeClubRepo) GetByID(ctx context.Context, id int) (*models.Club, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	club, ok := f.clubs[id]
	if !ok {
		return nil, repositories.ErrClubNotFound
	}
	cp := *club
	return &cp, nil
}

func (f *fakeClubRepo) List(ctx context.Context) ([]models.Club, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Club, 0, len(f.clubs))
	for _, club := range f.clubs {
		out = append(out, *club)
	}
	return out, nil
}

func (f *fakeClubRepo) Update(ctx context.Context, club *models.Club) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, club)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clubs[club.ID]; !ok {
		return repositories.ErrClubNotFound
	}
	cp := *club
	f.clubs[club.ID] = &cp
	return nil
}

func (f *fakeClubRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clubs[id]; !ok {
		return repositories.ErrClubNotFound
	}
	delete(f.clubs, id)
	return nil
}

func (f *fakeClubRepo) ExistsForShare(ctx context.Context, q repositories.SQLExecutor, id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.clubs[id]
	return ok, nil
}

type fakeVehicleRepo struct {
	mu       sync.Mutex
	kind     models.VehicleKind
	vehicles map[int]*models.Vehicle
	nextID   int

	CreateFunc func(ctx context.Context, vehicle *models.Vehicle) error
	UpdateFunc func(ctx context.Context, vehicle *models.Vehicle) error
}

func newFakeVehicleRepo(kind models.VehicleKind) *fakeVehicleRepo {
	return &fakeVehicleRepo{kind: kind, vehicles: make(map[int]*models.Vehicle), nextID: 1}
}

func (f *fakeVehicleRepo) add(vehicle *models.Vehicle) *models.Vehicle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if vehicle.ID == 0 {
		vehicle.ID = f.nextID
		f.nextID++
	}
	vehicle.Kind = f.kind
	cp := *vehicle
	f.vehicles[vehicle.ID] = &cp
	return vehicle
}

func (f *fakeVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, vehicle)
	}
	f.add(vehicle)
	return nil
}

func (f *fakeVehicleRepo) GetByID(ctx context.Context, id int) (*models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vehicle, ok := f.vehicles[id]
	if !ok {
		return nil, repositories.ErrVehicleNotFound
	}
	cp := *vehicle
	return &cp, nil
}

func (f *fakeVehicleRepo) ListByUserID(ctx context.Context, userID int) ([]models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Vehicle
	for _, vehicle := range f.vehicles {
		if vehicle.UserID == userID {
			out = append(out, *vehicle)
		}
	}
	return out, nil
}

func (f *fakeVehicleRepo) Update(ctx context.Context, vehicle *models.Vehicle) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, vehicle)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vehicles[vehicle.ID]; !ok {
		return repositories.ErrVehicleNotFound
	}
	cp := *vehicle
	f.vehicles[vehicle.ID] = &cp
	return nil
}

func (f *fakeVehicleRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vehicles[id]; !ok {
		return repositories.ErrVehicleNotFound
	}
	delete(f.vehicles, id)
	return nil
}

func (f *fakeVehicleRepo) Kind() models.VehicleKind { return f.kind }

type fakeEventRepo struct {
	mu       sync.Mutex
	events   map[int]*models.Event
	closures []models.EventClosure
	nextID   int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[int]*models.Event), nextID: 1}
}

func (f *fakeEventRepo) add(event *models.Event) *models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.ID == 0 {
		event.ID = f.nextID
		f.nextID++
	}
	cp := *event
	f.events[event.ID] = &cp
	return event
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	f.add(event)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	cp := *event
	return &cp, nil
}

func (f *fakeEventRepo) List(ctx context.Context) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Event, 0, len(f.events))
	for _, event := range f.events {
		out = append(out, *event)
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(f.events, id)
	return nil
}

// CloseExpired mirrors the SQL sweep: one closure per ended event, never a
// second one for the same event.
func (f *fakeEventRepo) CloseExpired(ctx context.Context) ([]models.EventClosure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	closed := make(map[int]bool, len(f.closures))
	for _, c := range f.closures {
		closed[c.EventID] = true
	}

	var written []models.EventClosure
	now := time.Now()
	for _, event := range f.events {
		if event.EndsAt.Before(now) && !closed[event.ID] {
			closure := models.EventClosure{
				ID:         len(f.closures) + len(written) + 1,
				EventID:    event.ID,
				EventTitle: event.Title,
				ClosedAt:   now,
			}
			written = append(written, closure)
		}
	}
	f.closures = append(f.closures, written...)
	return written, nil
}

func (f *fakeEventRepo) ListClosures(ctx context.Context) ([]models.EventClosure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.EventClosure, len(f.closures))
	copy(out, f.closures)
	return out, nil
}

type fakeNewsRepo struct {
	mu     sync.Mutex
	posts  map[int]*models.NewsPost
	nextID int
}

func newFakeNewsRepo() *fakeNewsRepo {
	return &fakeNewsRepo{posts: make(map[int]*models.NewsPost), nextID: 1}
}

func (f *fakeNewsRepo) add(post *models.NewsPost) *models.NewsPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post.ID == 0 {
		post.ID = f.nextID
		f.nextID++
	}
	if post.Date.IsZero() {
		post.Date = time.Now()
	}
	cp := *post
	f.posts[post.ID] = &cp
	return post
}

func (f *fakeNewsRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

func (f *fakeNewsRepo) Create(ctx context.Context, post *models.NewsPost) error {
	f.add(post)
	return nil
}

func (f *fakeNewsRepo) GetByID(ctx context.Context, id int) (*models.NewsPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return nil, repositories.ErrNewsPostNotFound
	}
	cp := *post
	return &cp, nil
}

func (f *fakeNewsRepo) List(ctx context.Context) ([]models.NewsPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.NewsPost, 0, len(f.posts))
	for _, post := range f.posts {
		out = append(out, *post)
	}
	return out, nil
}

func (f *fakeNewsRepo) Update(ctx context.Context, post *models.NewsPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[post.ID]; !ok {
		return repositories.ErrNewsPostNotFound
	}
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakeNewsRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.posts, id)
	return nil
}

type fakeLocationRepo struct {
	mu        sync.Mutex
	locations map[int]*models.Location
	nextID    int
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: make(map[int]*models.Location), nextID: 1}
}

func (f *fakeLocationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.locations)
}

func (f *fakeLocationRepo) Create(ctx context.Context, location *models.Location) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if location.ID == 0 {
		location.ID = f.nextID
		f.nextID++
	}
	cp := *location
	f.locations[location.ID] = &cp
	return nil
}

func (f *fakeLocationRepo) GetByID(ctx context.Context, id int) (*models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	location, ok := f.locations[id]
	if !ok {
		return nil, repositories.ErrLocationNotFound
	}
	cp := *location
	return &cp, nil
}

func (f *fakeLocationRepo) List(ctx context.Context) ([]models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Location, 0, len(f.locations))
	for _, location := range f.locations {
		out = append(out, *location)
	}
	return out, nil
}

func (f *fakeLocationRepo) Update(ctx context.Context, location *models.Location) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.locations[location.ID]; !ok {
		return repositories.ErrLocationNotFound
	}
	cp := *location
	f.locations[location.ID] = &cp
	return nil
}

func (f *fakeLocationRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locations, id)
	return nil
}

// fakeTxRunner runs the callback directly. The membership fakes ignore the
// executor argument, so no transaction handle is needed.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(q repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeUploader struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string

	UploadFunc func(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error)
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.UploadFunc != nil {
		return f.UploadFunc(ctx, key, contentType, reader)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}
