package repository

import (
	"context"
	"sort"
	"sync"

	"medml-backend/internal/domain"
)

// Memory repositories back the service tests and local runs without a
// database. They only promise the semantics the services rely on
// (append-only histories, latest-by-timestamp), not full SQL behavior.

type MemoryPatientsRepo struct {
	mu       sync.RWMutex
	patients map[string]domain.Patient
}

func NewMemoryPatientsRepo() *MemoryPatientsRepo {
	return &MemoryPatientsRepo{patients: map[string]domain.Patient{}}
}

var _ PatientsRepository = (*MemoryPatientsRepo)(nil)

func (r *MemoryPatientsRepo) CreatePatient(_ context.Context, p *domain.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.patients {
		if existing.AbhaID == p.AbhaID {
			return domain.ErrDuplicateAbhaID
		}
	}
	r.patients[p.PatientID] = *p
	return nil
}

func (r *MemoryPatientsRepo) GetPatient(_ context.Context, patientID string) (*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[patientID]
	if !ok {
		return nil, domain.ErrPatientNotFound
	}
	return &p, nil
}

func (r *MemoryPatientsRepo) GetPatientByAbhaID(_ context.Context, abhaID string) (*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if p.AbhaID == abhaID {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrPatientNotFound
}

func (r *MemoryPatientsRepo) ListPatients(_ context.Context, _ PatientFilter) ([]*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryPatientsRepo) UpdatePatient(_ context.Context, p *domain.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[p.PatientID]; !ok {
		return domain.ErrPatientNotFound
	}
	r.patients[p.PatientID] = *p
	return nil
}

func (r *MemoryPatientsRepo) DeletePatient(_ context.Context, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[patientID]; !ok {
		return domain.ErrPatientNotFound
	}
	delete(r.patients, patientID)
	return nil
}

func (r *MemoryPatientsRepo) CountPatients(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patients), nil
}

type MemoryAssessmentsRepo struct {
	mu           sync.RWMutex
	diabetes     map[string][]domain.DiabetesAssessment
	liver        map[string][]domain.LiverAssessment
	heart        map[string][]domain.HeartAssessment
	mentalHealth map[string][]domain.MentalHealthAssessment
}

func NewMemoryAssessmentsRepo() *MemoryAssessmentsRepo {
	return &MemoryAssessmentsRepo{
		diabetes:     map[string][]domain.DiabetesAssessment{},
		liver:        map[string][]domain.LiverAssessment{},
		heart:        map[string][]domain.HeartAssessment{},
		mentalHealth: map[string][]domain.MentalHealthAssessment{},
	}
}

var _ AssessmentsRepository = (*MemoryAssessmentsRepo)(nil)

func (r *MemoryAssessmentsRepo) CreateDiabetes(_ context.Context, a *domain.DiabetesAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diabetes[a.PatientID] = append(r.diabetes[a.PatientID], *a)
	return nil
}

func (r *MemoryAssessmentsRepo) LatestDiabetes(_ context.Context, patientID string) (*domain.DiabetesAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.diabetes[patientID]
	if len(history) == 0 {
		return nil, nil
	}
	latest := history[0]
	for _, a := range history[1:] {
		if a.AssessedAt.After(latest.AssessedAt) {
			latest = a
		}
	}
	return &latest, nil
}

func (r *MemoryAssessmentsRepo) ListDiabetes(_ context.Context, patientID string) ([]*domain.DiabetesAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.diabetes[patientID]
	out := make([]*domain.DiabetesAssessment, 0, len(history))
	for i := range history {
		cp := history[i]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssessedAt.After(out[j].AssessedAt) })
	return out, nil
}

func (r *MemoryAssessmentsRepo) CreateLiver(_ context.Context, a *domain.LiverAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.liver[a.PatientID] = append(r.liver[a.PatientID], *a)
	return nil
}

func (r *MemoryAssessmentsRepo) LatestLiver(_ context.Context, patientID string) (*domain.LiverAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.liver[patientID]
	if len(history) == 0 {
		return nil, nil
	}
	latest := history[0]
	for _, a := range history[1:] {
		if a.AssessedAt.After(latest.AssessedAt) {
			latest = a
		}
	}
	return &latest, nil
}

func (r *MemoryAssessmentsRepo) ListLiver(_ context.Context, patientID string) ([]*domain.LiverAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.liver[patientID]
	out := make([]*domain.LiverAssessment, 0, len(history))
	for i := range history {
		cp := history[i]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssessedAt.After(out[j].AssessedAt) })
	return out, nil
}

func (r *MemoryAssessmentsRepo) CreateHeart(_ context.Context, a *domain.HeartAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heart[a.PatientID] = append(r.heart[a.PatientID], *a)
	return nil
}

func (r *MemoryAssessmentsRepo) LatestHeart(_ context.Context, patientID string) (*domain.HeartAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.heart[patientID]
	if len(history) == 0 {
		return nil, nil
	}
	latest := history[0]
	for _, a := range history[1:] {
		if a.AssessedAt.After(latest.AssessedAt) {
			latest = a
		}
	}
	return &latest, nil
}

func (r *MemoryAssessmentsRepo) ListHeart(_ context.Context, patientID string) ([]*domain.HeartAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.heart[patientID]
	out := make([]*domain.HeartAssessment, 0, len(history))
	for i := range history {
		cp := history[i]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssessedAt.After(out[j].AssessedAt) })
	return out, nil
}

func (r *MemoryAssessmentsRepo) CreateMentalHealth(_ context.Context, a *domain.MentalHealthAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mentalHealth[a.PatientID] = append(r.mentalHealth[a.PatientID], *a)
	return nil
}

func (r *MemoryAssessmentsRepo) LatestMentalHealth(_ context.Context, patientID string) (*domain.MentalHealthAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.mentalHealth[patientID]
	if len(history) == 0 {
		return nil, nil
	}
	latest := history[0]
	for _, a := range history[1:] {
		if a.AssessedAt.After(latest.AssessedAt) {
			latest = a
		}
	}
	return &latest, nil
}

func (r *MemoryAssessmentsRepo) ListMentalHealth(_ context.Context, patientID string) ([]*domain.MentalHealthAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.mentalHealth[patientID]
	out := make([]*domain.MentalHealthAssessment, 0, len(history))
	for i := range history {
		cp := history[i]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssessedAt.After(out[j].AssessedAt) })
	return out, nil
}

type MemoryUsersRepo struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUsersRepo() *MemoryUsersRepo {
	return &MemoryUsersRepo{users: map[string]domain.User{}}
}

var _ UsersRepository = (*MemoryUsersRepo)(nil)

func (r *MemoryUsersRepo) CreateUser(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.users[u.UserID] = *u
	return nil
}

func (r *MemoryUsersRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUsersRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type MemoryConsultationsRepo struct {
	mu    sync.RWMutex
	items map[string]domain.Consultation
}

func NewMemoryConsultationsRepo() *MemoryConsultationsRepo {
	return &MemoryConsultationsRepo{items: map[string]domain.Consultation{}}
}

var _ ConsultationsRepository = (*MemoryConsultationsRepo)(nil)

func (r *MemoryConsultationsRepo) CreateConsultation(_ context.Context, c *domain.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ConsultationID] = *c
	return nil
}

func (r *MemoryConsultationsRepo) GetConsultation(_ context.Context, consultationID string) (*domain.Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[consultationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *MemoryConsultationsRepo) ListConsultationsByPatient(_ context.Context, patientID string) ([]*domain.Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Consultation, 0)
	for id := range r.items {
		if r.items[id].PatientID == patientID {
			cp := r.items[id]
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return out, nil
}

func (r *MemoryConsultationsRepo) UpdateConsultationStatus(_ context.Context, consultationID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[consultationID]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	r.items[consultationID] = c
	return nil
}

type MemoryPredictionsRepo struct {
	mu        sync.RWMutex
	snapshots map[string][]domain.RiskPrediction
}

func NewMemoryPredictionsRepo() *MemoryPredictionsRepo {
	return &MemoryPredictionsRepo{snapshots: map[string][]domain.RiskPrediction{}}
}

var _ PredictionsRepository = (*MemoryPredictionsRepo)(nil)

func (r *MemoryPredictionsRepo) CreatePrediction(_ context.Context, p *domain.RiskPrediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[p.PatientID] = append(r.snapshots[p.PatientID], *p)
	return nil
}

func (r *MemoryPredictionsRepo) LatestPrediction(_ context.Context, patientID string) (*domain.RiskPrediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.snapshots[patientID]
	if len(history) == 0 {
		return nil, nil
	}
	latest := history[0]
	for _, p := range history[1:] {
		if p.PredictedAt.After(latest.PredictedAt) {
			latest = p
		}
	}
	return &latest, nil
}

func (r *MemoryPredictionsRepo) ListPredictions(_ context.Context, patientID string) ([]*domain.RiskPrediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.snapshots[patientID]
	out := make([]*domain.RiskPrediction, 0, len(history))
	for i := range history {
		cp := history[i]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PredictedAt.After(out[j].PredictedAt) })
	return out, nil
}

func (r *MemoryPredictionsRepo) CountHighRiskPatients(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := map[string]int{}
	for patientID := range r.snapshots {
		latest, _ := r.latestLocked(patientID)
		if latest == nil {
			continue
		}
		for _, d := range domain.Diseases {
			res := latest.Result(d)
			if res.Level != nil && *res.Level == domain.RiskHigh {
				counts[d]++
			}
		}
	}
	return counts, nil
}

func (r *MemoryPredictionsRepo) latestLocked(patientID string) (*domain.RiskPrediction, error) {
	history := r.snapshots[patientID]
	if len(history) == 0 {
		return nil, nil
	}
	latest := history[0]
	for _, p := range history[1:] {
		if p.PredictedAt.After(latest.PredictedAt) {
			latest = p
		}
	}
	return &latest, nil
}
