package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sahil0902/shiftssc2-sub000/internal/model"
	"github.com/sahil0902/shiftssc2-sub000/internal/repository"
	pkgerrors "github.com/sahil0902/shiftssc2-sub000/pkg/errors"
)

// ── Mock OrganizationRepository ──

type mockOrganizationRepo struct {
	organizations map[string]*model.Organization
}

func newMockOrganizationRepo() *mockOrganizationRepo {
	m := &mockOrganizationRepo{organizations: make(map[string]*model.Organization)}
	// 预置测试组织
	org := &model.Organization{
		OrganizationID: "org-001",
		Name:           "测试组织",
		Slug:           "testorg",
		Settings: model.OrganizationSettings{
			NotificationPrefs: model.NotificationPrefs{
				ApplicationApproved: true,
				ApplicationRejected: true,
			},
		},
	}
	org.Version = 1
	m.organizations[org.OrganizationID] = org
	return m
}

func (m *mockOrganizationRepo) CreateWithOwner(_ context.Context, org *model.Organization, owner *model.User) error {
	if org.OrganizationID == "" {
		org.OrganizationID = "org-" + org.Slug
	}
	org.Version = 1
	m.organizations[org.OrganizationID] = org
	owner.OrganizationID = org.OrganizationID
	if owner.UserID == "" {
		owner.UserID = "user-" + owner.Email
	}
	return nil
}

func (m *mockOrganizationRepo) GetByID(_ context.Context, id string) (*model.Organization, error) {
	if o, ok := m.organizations[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrganizationRepo) GetBySlug(_ context.Context, slug string) (*model.Organization, error) {
	for _, o := range m.organizations {
		if o.Slug == slug {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrganizationRepo) Update(_ context.Context, org *model.Organization) error {
	stored, ok := m.organizations[org.OrganizationID]
	if !ok || stored.Version != org.Version {
		return pkgerrors.ErrOptimisticLock
	}
	org.Version++
	m.organizations[org.OrganizationID] = org
	return nil
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	departments map[string]*model.Department
	userRepo    *mockUserRepo
	shiftRepo   *mockShiftRepo
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	m := &mockDepartmentRepo{departments: make(map[string]*model.Department)}
	// 预置测试部门
	m.departments["dept-001"] = &model.Department{
		DepartmentID:   "dept-001",
		OrganizationID: "org-001",
		Name:           "运营部",
	}
	return m
}

func (m *mockDepartmentRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		dept.DepartmentID = "dept-" + dept.Name
	}
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, organizationID, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok && d.OrganizationID == organizationID {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) GetByName(_ context.Context, organizationID, name string) (*model.Department, error) {
	for _, d := range m.departments {
		if d.OrganizationID == organizationID && d.Name == name {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) List(_ context.Context, organizationID string) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		if d.OrganizationID == organizationID {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, dept *model.Department) error {
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDepartmentRepo) Delete(_ context.Context, organizationID, id string, _ string) error {
	if d, ok := m.departments[id]; ok && d.OrganizationID == organizationID {
		delete(m.departments, id)
	}
	return nil
}

func (m *mockDepartmentRepo) CountMembers(_ context.Context, organizationID, departmentID string) (int64, error) {
	if m.userRepo == nil {
		return 0, nil
	}
	var count int64
	for _, u := range m.userRepo.users {
		if u.OrganizationID == organizationID && u.DepartmentID != nil && *u.DepartmentID == departmentID {
			count++
		}
	}
	return count, nil
}

func (m *mockDepartmentRepo) CountShifts(_ context.Context, organizationID, departmentID string) (int64, error) {
	if m.shiftRepo == nil {
		return 0, nil
	}
	var count int64
	for _, s := range m.shiftRepo.shifts {
		if s.OrganizationID == organizationID && s.DepartmentID == departmentID {
			count++
		}
	}
	return count, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, organizationID, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok && u.OrganizationID == organizationID {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, organizationID string, filters *repository.UserListFilters, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if u.OrganizationID != organizationID {
			continue
		}
		if filters != nil {
			if filters.DepartmentID != "" && (u.DepartmentID == nil || *u.DepartmentID != filters.DepartmentID) {
				continue
			}
			if filters.Role != "" && string(u.Role) != filters.Role {
				continue
			}
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, organizationID, id string, _ string) error {
	if u, ok := m.users[id]; ok && u.OrganizationID == organizationID {
		delete(m.users, id)
	}
	return nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts map[string]*model.Shift
	seq    int
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift)}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		m.seq++
		shift.ShiftID = fmt.Sprintf("shift-%03d", m.seq)
	}
	if shift.Version == 0 {
		shift.Version = 1
	}
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, organizationID, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok && s.OrganizationID == organizationID {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context, organizationID string, filters *repository.ShiftListFilters, _, _ int) ([]model.Shift, int64, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.OrganizationID != organizationID {
			continue
		}
		if filters != nil {
			if filters.Status != "" && s.Status != filters.Status {
				continue
			}
			if filters.DepartmentID != "" && s.DepartmentID != filters.DepartmentID {
				continue
			}
			if filters.DateFrom != nil && s.ShiftDate.Before(*filters.DateFrom) {
				continue
			}
			if filters.DateTo != nil && s.ShiftDate.After(*filters.DateTo) {
				continue
			}
		}
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

func (m *mockShiftRepo) ListAssigned(_ context.Context, organizationID, userID string) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.OrganizationID != organizationID || s.UserID == nil || *s.UserID != userID {
			continue
		}
		if s.Status == model.ShiftStatusAssigned || s.Status == model.ShiftStatusInProgress {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	stored, ok := m.shifts[shift.ShiftID]
	if !ok || stored.OrganizationID != shift.OrganizationID || stored.Version != shift.Version {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version++
	copied := *shift
	m.shifts[shift.ShiftID] = &copied
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, organizationID, id string, _ string) error {
	if s, ok := m.shifts[id]; ok && s.OrganizationID == organizationID {
		delete(m.shifts, id)
	}
	return nil
}

// ── Mock ShiftApplicationRepository ──

type mockShiftApplicationRepo struct {
	applications map[string]*model.ShiftApplication
	shiftRepo    *mockShiftRepo
	// savedNotifs 记录 ApproveWinner 事务内写入的通知行
	savedNotifs []model.Notification
	seq         int
}

func newMockShiftApplicationRepo(shiftRepo *mockShiftRepo) *mockShiftApplicationRepo {
	return &mockShiftApplicationRepo{
		applications: make(map[string]*model.ShiftApplication),
		shiftRepo:    shiftRepo,
	}
}

func (m *mockShiftApplicationRepo) Create(_ context.Context, app *model.ShiftApplication) error {
	for _, a := range m.applications {
		if a.ShiftID == app.ShiftID && a.UserID == app.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if app.ApplicationID == "" {
		m.seq++
		app.ApplicationID = fmt.Sprintf("app-%03d", m.seq)
	}
	m.applications[app.ApplicationID] = app
	return nil
}

func (m *mockShiftApplicationRepo) GetByID(_ context.Context, shiftID, applicationID string) (*model.ShiftApplication, error) {
	if a, ok := m.applications[applicationID]; ok && a.ShiftID == shiftID {
		copied := *a
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftApplicationRepo) GetByShiftAndUser(_ context.Context, shiftID, userID string) (*model.ShiftApplication, error) {
	for _, a := range m.applications {
		if a.ShiftID == shiftID && a.UserID == userID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftApplicationRepo) ListByShift(_ context.Context, shiftID string) ([]model.ShiftApplication, error) {
	var result []model.ShiftApplication
	for _, a := range m.applications {
		if a.ShiftID == shiftID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockShiftApplicationRepo) ListPendingByShift(_ context.Context, shiftID string) ([]model.ShiftApplication, error) {
	var result []model.ShiftApplication
	for _, a := range m.applications {
		if a.ShiftID == shiftID && a.Status == model.ApplicationStatusPending {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockShiftApplicationRepo) ListByUser(_ context.Context, userID string) ([]model.ShiftApplication, error) {
	var result []model.ShiftApplication
	for _, a := range m.applications {
		if a.UserID == userID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockShiftApplicationRepo) Reject(_ context.Context, applicationID, reviewerID string, reviewedAt time.Time, notes string) error {
	a, ok := m.applications[applicationID]
	if !ok || a.Status != model.ApplicationStatusPending {
		return pkgerrors.ErrOptimisticLock
	}
	a.Status = model.ApplicationStatusRejected
	a.ReviewedAt = &reviewedAt
	a.ReviewedBy = &reviewerID
	if notes != "" {
		a.Notes = notes
	}
	return nil
}

func (m *mockShiftApplicationRepo) ApproveWinner(_ context.Context, shift *model.Shift, winner *model.ShiftApplication, reviewerID string, reviewedAt time.Time, notifs []model.Notification) error {
	// 模拟事务语义：班次版本或申请状态不符时整体失败，不产生任何副作用
	stored, ok := m.shiftRepo.shifts[shift.ShiftID]
	if !ok || stored.Version != shift.Version {
		return pkgerrors.ErrOptimisticLock
	}
	winnerStored, ok := m.applications[winner.ApplicationID]
	if !ok || winnerStored.Status != model.ApplicationStatusPending {
		return pkgerrors.ErrOptimisticLock
	}

	stored.Status = model.ShiftStatusAssigned
	stored.UserID = &winner.UserID
	stored.Version++

	winnerStored.Status = model.ApplicationStatusApproved
	winnerStored.ReviewedAt = &reviewedAt
	winnerStored.ReviewedBy = &reviewerID

	for _, a := range m.applications {
		if a.ShiftID == shift.ShiftID && a.ApplicationID != winner.ApplicationID && a.Status == model.ApplicationStatusPending {
			a.Status = model.ApplicationStatusRejected
			a.ReviewedAt = &reviewedAt
			a.ReviewedBy = &reviewerID
		}
	}

	m.savedNotifs = append(m.savedNotifs, notifs...)

	shift.Version = stored.Version
	shift.Status = model.ShiftStatusAssigned
	shift.UserID = &winner.UserID
	winner.Status = model.ApplicationStatusApproved
	winner.ReviewedAt = &reviewedAt
	winner.ReviewedBy = &reviewerID
	return nil
}

// ── Mock ShiftCommentRepository ──

type mockShiftCommentRepo struct {
	comments map[string]*model.ShiftComment
	seq      int
}

func newMockShiftCommentRepo() *mockShiftCommentRepo {
	return &mockShiftCommentRepo{comments: make(map[string]*model.ShiftComment)}
}

func (m *mockShiftCommentRepo) Create(_ context.Context, comment *model.ShiftComment) error {
	if comment.CommentID == "" {
		m.seq++
		comment.CommentID = fmt.Sprintf("comment-%03d", m.seq)
	}
	m.comments[comment.CommentID] = comment
	return nil
}

func (m *mockShiftCommentRepo) ListByShift(_ context.Context, shiftID string) ([]model.ShiftComment, error) {
	var result []model.ShiftComment
	for _, c := range m.comments {
		if c.ShiftID == shiftID {
			result = append(result, *c)
		}
	}
	return result, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications map[string]*model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[string]*model.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, notif *model.Notification) error {
	if notif.NotificationID == "" {
		m.seq++
		notif.NotificationID = fmt.Sprintf("notif-%03d", m.seq)
	}
	m.notifications[notif.NotificationID] = notif
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, _, _ int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, *n)
	}
	return result, int64(len(result)), nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, userID, notificationID string) error {
	if n, ok := m.notifications[notificationID]; ok && n.UserID == userID {
		n.IsRead = true
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
