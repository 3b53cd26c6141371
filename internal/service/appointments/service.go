package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	staffRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/staff"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
)

// Service сервис просмотра записей и управления их статусом
type Service struct {
	appointmentRepo AppointmentRepository
	staffRepo       StaffRepository
	outboxRepo      OutboxRepository
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	staffRepo StaffRepository,
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		staffRepo:       staffRepo,
		outboxRepo:      outboxRepo,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает запись по ID.
// Клиент видит свои записи, мастер - назначенные ему, администратор - все.
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d (%s)", id, actor.ID, actor.Role)

	a, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if !canView(actor, a) {
		s.logger.Warn("GetByID: access denied for user=%d to appointment id=%d", actor.ID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainAppointment(a), nil
}

// List возвращает записи в зависимости от роли: клиенту - свои,
// мастеру - назначенные, администратору - все. Сначала самые поздние.
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("List: fetching appointments for user=%d (%s), status=%v", req.Actor.ID, req.Actor.Role, req.Status)

	filter := domain.AppointmentsFilter{}
	switch req.Actor.Role {
	case domain.RoleCustomer:
		filter.CustomerID = &req.Actor.ID
	case domain.RoleWorker:
		filter.StaffID = &req.Actor.ID
	case domain.RoleAdmin:
	default:
		return nil, ErrAccessDenied
	}

	if req.Status != nil {
		status, err := models.ToDomainStatus(*req.Status)
		if err != nil {
			s.logger.Warn("List: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	list, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: found %d appointments for user=%d", len(list), req.Actor.ID)
	return models.FromDomainAppointmentList(list), nil
}

// SetStatus меняет статус записи и, для администратора, назначенного мастера.
// Прямая отмена здесь не запускает расчет возврата.
func (s *Service) SetStatus(ctx context.Context, req *models.SetStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("SetStatus: appointment=%d, status=%s, reassign=%v by user=%d (%s)",
		req.AppointmentID, req.Status, req.ReassignStaffID, req.Actor.ID, req.Actor.Role)

	target, err := validateSetStatus(req)
	if err != nil {
		s.logger.Warn("SetStatus: validation failed: %v", err)
		return nil, err
	}

	now := s.timeProvider.Now()
	var result *domain.Appointment

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		a, err := s.appointmentRepo.GetByIDForUpdate(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				s.logger.Warn("SetStatus: appointment id=%d not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			s.logger.Error("SetStatus: failed to get appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: SetStatus - repository error: %v", ErrInternal, err)
		}

		if err := checkManageAccess(req.Actor, a, req.ReassignStaffID != nil); err != nil {
			s.logger.Warn("SetStatus: user=%d (%s) cannot manage appointment id=%d", req.Actor.ID, req.Actor.Role, a.ID)
			return err
		}

		statusChanged := target != a.Status
		reassign := req.ReassignStaffID != nil && !a.IsAssignedTo(*req.ReassignStaffID)

		if statusChanged && !domain.CanTransition(a.Status, target) {
			s.logger.Warn("SetStatus: transition %s -> %s is not allowed", a.Status, target)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, target)
		}
		// Подтверждает ожидающую запись только администратор
		if statusChanged && a.Status == domain.StatusPending && target == domain.StatusConfirmed && !req.Actor.IsAdmin() {
			s.logger.Warn("SetStatus: user=%d (%s) cannot confirm pending appointment id=%d", req.Actor.ID, req.Actor.Role, a.ID)
			return fmt.Errorf("%w: only admin can confirm a pending appointment", ErrAccessDenied)
		}
		if !statusChanged && req.ReassignStaffID == nil {
			return fmt.Errorf("%w: appointment is already %s", ErrInvalidTransition, target)
		}
		if req.ReassignStaffID != nil && (target == domain.StatusCompleted || target == domain.StatusCancelled) {
			return fmt.Errorf("%w: cannot reassign a %s appointment", ErrInvalidTransition, target)
		}

		// Переназначение мастера
		if reassign {
			if err := s.reassign(txCtx, a, *req.ReassignStaffID); err != nil {
				return err
			}
		}

		if target == domain.StatusConfirmed && a.StaffID == nil {
			return fmt.Errorf("%w: assign a staff member before confirming", ErrInvalidInput)
		}

		// Смена статуса
		if statusChanged {
			if err := s.applyStatus(txCtx, a, target, req.Actor, now); err != nil {
				return err
			}
		}

		event, err := domain.NewAppointmentEvent(domain.EventAppointmentStatusChanged, a, req.Actor.ID, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if err := s.outboxRepo.Insert(txCtx, event); err != nil {
			s.logger.Error("SetStatus: failed to store event: %v", err)
			return fmt.Errorf("%w: failed to store event: %v", ErrInternal, err)
		}

		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("SetStatus: appointment id=%d is now %s", result.ID, result.Status)
	return models.FromDomainAppointment(result), nil
}

// reassign проверяет нового мастера, блокирует его строку и проверяет пересечения
func (s *Service) reassign(ctx context.Context, a *domain.Appointment, staffID int64) error {
	if _, err := s.staffRepo.GetActiveWorker(ctx, staffID); err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			s.logger.Warn("SetStatus: staff id=%d not found or inactive", staffID)
			return ErrStaffNotFound
		}
		s.logger.Error("SetStatus: failed to get staff id=%d: %v", staffID, err)
		return fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
	}

	if err := s.staffRepo.LockByIDs(ctx, []int64{staffID}); err != nil {
		if txmanager.IsConflictError(err) {
			s.logger.Warn("SetStatus: lost lock race for staff id=%d: %v", staffID, err)
			return fmt.Errorf("%w: lock staff: %v", ErrConcurrencyConflict, err)
		}
		s.logger.Error("SetStatus: failed to lock staff id=%d: %v", staffID, err)
		return fmt.Errorf("%w: failed to lock staff: %v", ErrInternal, err)
	}

	existing, err := s.appointmentRepo.ListActiveByStaffInRange(ctx, []int64{staffID}, a.StartTime, a.EndTime)
	if err != nil {
		s.logger.Error("SetStatus: failed to list appointments of staff id=%d: %v", staffID, err)
		return fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}
	for _, other := range existing {
		if other.ID != a.ID {
			s.logger.Warn("SetStatus: staff id=%d is busy with appointment id=%d", staffID, other.ID)
			return ErrStaffUnavailable
		}
	}

	if err := s.appointmentRepo.AssignStaff(ctx, a.ID, staffID); err != nil {
		if errors.Is(err, appointmentRepo.ErrStaffConflict) {
			return ErrStaffUnavailable
		}
		s.logger.Error("SetStatus: failed to assign staff id=%d: %v", staffID, err)
		return fmt.Errorf("%w: failed to assign staff: %v", ErrInternal, err)
	}

	a.StaffID = &staffID
	return nil
}

func (s *Service) applyStatus(ctx context.Context, a *domain.Appointment, target domain.AppointmentStatus, actor domain.Actor, now time.Time) error {
	var err error
	if target == domain.StatusCancelled {
		err = s.appointmentRepo.Cancel(ctx, a.ID, appointmentRepo.CancelParams{
			CancelledBy: actor.ID,
			CancelledAt: now,
		})
	} else {
		err = s.appointmentRepo.UpdateStatus(ctx, a.ID, target)
	}
	if err != nil {
		s.logger.Error("SetStatus: failed to update appointment id=%d: %v", a.ID, err)
		return fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
	}

	a.Status = target
	if target == domain.StatusCancelled {
		a.CancelledBy = &actor.ID
		a.CancelledAt = &now
	}
	return nil
}

// RecordPayment фиксирует онлайн-оплату записи ссылкой на платеж.
// Повтор с той же ссылкой ничего не меняет.
func (s *Service) RecordPayment(ctx context.Context, req *models.RecordPaymentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("RecordPayment: appointment=%d by user=%d (%s)", req.AppointmentID, req.Actor.ID, req.Actor.Role)

	transactionID := strings.TrimSpace(req.TransactionID)
	if req.AppointmentID <= 0 || transactionID == "" {
		return nil, fmt.Errorf("%w: appointment ID and transaction ID are required", ErrInvalidInput)
	}

	var result *domain.Appointment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		a, err := s.appointmentRepo.GetByIDForUpdate(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			s.logger.Error("RecordPayment: failed to get appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: RecordPayment - repository error: %v", ErrInternal, err)
		}

		if !req.Actor.IsAdmin() && !(req.Actor.IsCustomer() && a.CustomerID == req.Actor.ID) {
			s.logger.Warn("RecordPayment: user=%d cannot pay for appointment id=%d", req.Actor.ID, a.ID)
			return ErrAccessDenied
		}
		if a.PaymentMethod != domain.PaymentOnline {
			return fmt.Errorf("%w: appointment is paid onsite", ErrInvalidInput)
		}
		if a.IsCancelled() {
			return fmt.Errorf("%w: appointment is cancelled", ErrInvalidTransition)
		}

		if a.PaymentStatus == domain.PaymentPaid {
			if a.TransactionID != nil && *a.TransactionID == transactionID {
				result = a
				return nil
			}
			return ErrAlreadyPaid
		}
		if a.PaymentStatus != domain.PaymentUnpaid {
			return ErrAlreadyPaid
		}

		if err := s.appointmentRepo.MarkPaid(txCtx, a.ID, transactionID); err != nil {
			s.logger.Error("RecordPayment: failed to mark appointment id=%d paid: %v", a.ID, err)
			return fmt.Errorf("%w: failed to mark paid: %v", ErrInternal, err)
		}
		a.PaymentStatus = domain.PaymentPaid
		a.TransactionID = &transactionID

		result = a
		return nil
	})
	if err != nil {
		s.logger.Warn("RecordPayment: appointment=%d: %v", req.AppointmentID, err)
		return nil, err
	}

	return models.FromDomainAppointment(result), nil
}

// canView проверяет право на просмотр записи
func canView(actor domain.Actor, a *domain.Appointment) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleWorker:
		return a.IsAssignedTo(actor.ID)
	case domain.RoleCustomer:
		return a.CustomerID == actor.ID
	default:
		return false
	}
}

// checkManageAccess администратор или назначенный мастер; переназначать может только администратор
func checkManageAccess(actor domain.Actor, a *domain.Appointment, reassign bool) error {
	switch {
	case actor.IsAdmin():
		return nil
	case actor.IsWorker() && a.IsAssignedTo(actor.ID):
		if reassign {
			return fmt.Errorf("%w: only admin can reassign staff", ErrAccessDenied)
		}
		return nil
	default:
		return ErrAccessDenied
	}
}

func validateSetStatus(req *models.SetStatusRequest) (domain.AppointmentStatus, error) {
	if req.AppointmentID <= 0 {
		return "", fmt.Errorf("%w: appointment ID must be positive", ErrInvalidInput)
	}
	if req.ReassignStaffID != nil && *req.ReassignStaffID <= 0 {
		return "", fmt.Errorf("%w: staff ID must be positive", ErrInvalidInput)
	}
	status, err := models.ToDomainStatus(req.Status)
	if err != nil {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	return status, nil
}
