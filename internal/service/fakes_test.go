package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"bookstore/internal/model"
	"bookstore/pkg/apperror"
)

// fakeTx runs the unit of work directly; the fakes below are not
// transactional, which is fine for service-level behavior tests.
type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func cloneUser(u *model.User) *model.User {
	cp := *u
	cp.Roles = append([]model.Role(nil), u.Roles...)
	return &cp
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, apperror.NotFound("User not found")
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, apperror.NotFound("User not found")
}

func (r *fakeUserRepo) FindBySubjectID(ctx context.Context, subjectID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.SubjectID != nil && *u.SubjectID == subjectID {
			return cloneUser(u), nil
		}
	}
	return nil, apperror.NotFound("User not found")
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []model.User
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, *cloneUser(r.users[id]))
	}
	return out, int64(len(r.users)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return apperror.NotFound("User not found")
	}
	cp := cloneUser(user)
	cp.Roles = append([]model.Role(nil), stored.Roles...)
	r.users[user.ID] = cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) ReplaceRoles(ctx context.Context, user *model.User, roles []model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return apperror.NotFound("User not found")
	}
	stored.Roles = append([]model.Role(nil), roles...)
	return nil
}

func cloneRole(role *model.Role) *model.Role {
	cp := *role
	cp.Permissions = append([]model.Permission(nil), role.Permissions...)
	return &cp
}

type fakeRoleRepo struct {
	mu         sync.Mutex
	nextID     uint
	roles      map[uint]*model.Role
	perms      map[uint]*model.Permission
	userCounts map[uint]int64
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{
		roles:      make(map[uint]*model.Role),
		perms:      make(map[uint]*model.Permission),
		userCounts: make(map[uint]int64),
	}
}

// seedAccessControl loads the bootstrap roles and permissions.
func (r *fakeRoleRepo) seedAccessControl() {
	ctx := context.Background()
	for _, name := range []string{model.PermRead, model.PermWrite, model.PermDelete, model.PermAdmin} {
		_ = r.CreatePermission(ctx, &model.Permission{Name: name})
	}
	read, _ := r.FindPermissionByName(ctx, model.PermRead)
	write, _ := r.FindPermissionByName(ctx, model.PermWrite)
	del, _ := r.FindPermissionByName(ctx, model.PermDelete)
	admin, _ := r.FindPermissionByName(ctx, model.PermAdmin)

	_ = r.Create(ctx, &model.Role{Name: model.RoleAdmin, Permissions: []model.Permission{*read, *write, *del, *admin}})
	_ = r.Create(ctx, &model.Role{Name: model.RolePublisher, Permissions: []model.Permission{*read, *write}})
	_ = r.Create(ctx, &model.Role{Name: model.RoleReader, Permissions: []model.Permission{*read}})
}

func (r *fakeRoleRepo) Create(ctx context.Context, role *model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	role.ID = r.nextID
	r.roles[role.ID] = cloneRole(role)
	return nil
}

func (r *fakeRoleRepo) Update(ctx context.Context, role *model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.roles[role.ID]
	if !ok {
		return apperror.NotFound("Role not found")
	}
	cp := cloneRole(role)
	cp.Permissions = append([]model.Permission(nil), stored.Permissions...)
	r.roles[role.ID] = cp
	return nil
}

func (r *fakeRoleRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.roles, id)
	return nil
}

func (r *fakeRoleRepo) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[id]; ok {
		return cloneRole(role), nil
	}
	return nil, apperror.NotFound("Role not found")
}

func (r *fakeRoleRepo) FindByName(ctx context.Context, name string) (*model.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Name == name {
			return cloneRole(role), nil
		}
	}
	return nil, apperror.NotFound("Role not found")
}

func (r *fakeRoleRepo) List(ctx context.Context) ([]model.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint, 0, len(r.roles))
	for id := range r.roles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]model.Role, 0, len(ids))
	for _, id := range ids {
		out = append(out, *cloneRole(r.roles[id]))
	}
	return out, nil
}

func (r *fakeRoleRepo) CountUsersWithRole(ctx context.Context, id uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userCounts[id], nil
}

func (r *fakeRoleRepo) CreatePermission(ctx context.Context, perm *model.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	perm.ID = r.nextID
	cp := *perm
	r.perms[perm.ID] = &cp
	return nil
}

func (r *fakeRoleRepo) FindPermissionByID(ctx context.Context, id uint) (*model.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if perm, ok := r.perms[id]; ok {
		cp := *perm
		return &cp, nil
	}
	return nil, apperror.NotFound("Permission not found")
}

func (r *fakeRoleRepo) FindPermissionByName(ctx context.Context, name string) (*model.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, perm := range r.perms {
		if perm.Name == name {
			cp := *perm
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("Permission not found")
}

func (r *fakeRoleRepo) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint, 0, len(r.perms))
	for id := range r.perms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]model.Permission, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.perms[id])
	}
	return out, nil
}

func (r *fakeRoleRepo) AttachPermission(ctx context.Context, role *model.Role, perm *model.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.roles[role.ID]
	if !ok {
		return apperror.NotFound("Role not found")
	}
	stored.Permissions = append(stored.Permissions, *perm)
	return nil
}

func (r *fakeRoleRepo) DetachPermission(ctx context.Context, role *model.Role, perm *model.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.roles[role.ID]
	if !ok {
		return apperror.NotFound("Role not found")
	}
	remaining := stored.Permissions[:0]
	for _, p := range stored.Permissions {
		if p.ID != perm.ID {
			remaining = append(remaining, p)
		}
	}
	stored.Permissions = remaining
	return nil
}

func cloneBook(b *model.Book) *model.Book {
	cp := *b
	cp.Genres = append([]model.Genre(nil), b.Genres...)
	return &cp
}

type fakeBookRepo struct {
	mu     sync.Mutex
	nextID uint
	books  map[uint]*model.Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[uint]*model.Book)}
}

func (r *fakeBookRepo) Create(ctx context.Context, book *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	book.ID = r.nextID
	r.books[book.ID] = cloneBook(book)
	return nil
}

func (r *fakeBookRepo) FindByID(ctx context.Context, id uint) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.books[id]; ok {
		return cloneBook(b), nil
	}
	return nil, apperror.NotFound("Book not found")
}

func (r *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.ISBN == isbn {
			return cloneBook(b), nil
		}
	}
	return nil, apperror.NotFound("Book not found")
}

func (r *fakeBookRepo) List(ctx context.Context, offset, limit int) ([]model.Book, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint, 0, len(r.books))
	for id := range r.books {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []model.Book
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, *cloneBook(r.books[id]))
	}
	return out, int64(len(r.books)), nil
}

func (r *fakeBookRepo) SearchByTitle(ctx context.Context, query string) ([]model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Book
	for _, b := range r.books {
		if strings.Contains(strings.ToLower(b.Title), strings.ToLower(query)) {
			out = append(out, *cloneBook(b))
		}
	}
	return out, nil
}

func (r *fakeBookRepo) Update(ctx context.Context, book *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[book.ID]; !ok {
		return apperror.NotFound("Book not found")
	}
	r.books[book.ID] = cloneBook(book)
	return nil
}

func (r *fakeBookRepo) ReplaceGenres(ctx context.Context, book *model.Book, genres []model.Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.books[book.ID]
	if !ok {
		return apperror.NotFound("Book not found")
	}
	stored.Genres = append([]model.Genre(nil), genres...)
	return nil
}

func (r *fakeBookRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.books, id)
	return nil
}

type fakeGenreRepo struct {
	mu     sync.Mutex
	nextID uint
	genres map[string]*model.Genre
}

func newFakeGenreRepo(names ...string) *fakeGenreRepo {
	r := &fakeGenreRepo{genres: make(map[string]*model.Genre)}
	for _, name := range names {
		_ = r.Create(context.Background(), &model.Genre{Name: name})
	}
	return r
}

func (r *fakeGenreRepo) Create(ctx context.Context, genre *model.Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	genre.ID = r.nextID
	cp := *genre
	r.genres[genre.Name] = &cp
	return nil
}

func (r *fakeGenreRepo) FindByName(ctx context.Context, name string) (*model.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.genres[name]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, apperror.NotFound("Genre not found")
}

func (r *fakeGenreRepo) FindByNames(ctx context.Context, names []string) ([]model.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Genre
	for _, name := range names {
		if g, ok := r.genres[name]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.genres))
	for name := range r.genres {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]model.Genre, 0, len(names))
	for _, name := range names {
		out = append(out, *r.genres[name])
	}
	return out, nil
}

type fakeAuthorRepo struct {
	mu      sync.Mutex
	nextID  uint
	authors map[uint]*model.Author
}

func newFakeAuthorRepo() *fakeAuthorRepo {
	return &fakeAuthorRepo{authors: make(map[uint]*model.Author)}
}

func (r *fakeAuthorRepo) Create(ctx context.Context, author *model.Author) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	author.ID = r.nextID
	cp := *author
	r.authors[author.ID] = &cp
	return nil
}

func (r *fakeAuthorRepo) FindByID(ctx context.Context, id uint) (*model.Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.authors[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, apperror.NotFound("Author not found")
}
