package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tournament-engine/models"
)

var errMemoryNoSQL = errors.New("memory store does not execute SQL")

// MemoryStore keeps everything in process memory. RunInTx serializes transactions
// and restores a snapshot when fn fails, so the repositories below follow the same
// check-and-set semantics as the postgres ones.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	nextTournamentID int
	nextMatchID      int
	tournaments      map[int]models.Tournament
	participants     map[int][]models.Participant
	matches          map[int]models.Match
	standings        map[int][]models.StandingRow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{
		tournaments:  make(map[int]models.Tournament),
		participants: make(map[int][]models.Participant),
		matches:      make(map[int]models.Match),
		standings:    make(map[int][]models.StandingRow),
	}}
}

// memoryTx marks calls made inside RunInTx; the lock is already held.
type memoryTx struct{}

func (memoryTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errMemoryNoSQL
}

func (memoryTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errMemoryNoSQL
}

func (memoryTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(exec SQLExecutor) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			s.state = snapshot
			panic(p)
		}
		if err != nil {
			s.state = snapshot
		}
	}()
	return fn(memoryTx{})
}

func (s *MemoryStore) acquire(exec SQLExecutor) func() {
	if _, inTx := exec.(memoryTx); inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Tournaments() TournamentRepository   { return &memoryTournamentRepository{s} }
func (s *MemoryStore) Participants() ParticipantRepository { return &memoryParticipantRepository{s} }
func (s *MemoryStore) Matches() MatchRepository            { return &memoryMatchRepository{s} }
func (s *MemoryStore) Standings() StandingRepository       { return &memoryStandingRepository{s} }

func (st memoryState) clone() memoryState {
	c := memoryState{
		nextTournamentID: st.nextTournamentID,
		nextMatchID:      st.nextMatchID,
		tournaments:      make(map[int]models.Tournament, len(st.tournaments)),
		participants:     make(map[int][]models.Participant, len(st.participants)),
		matches:          make(map[int]models.Match, len(st.matches)),
		standings:        make(map[int][]models.StandingRow, len(st.standings)),
	}
	for id, t := range st.tournaments {
		c.tournaments[id] = copyTournament(t)
	}
	for id, ps := range st.participants {
		c.participants[id] = append([]models.Participant(nil), ps...)
	}
	for id, m := range st.matches {
		c.matches[id] = copyMatch(m)
	}
	for id, rows := range st.standings {
		c.standings[id] = append([]models.StandingRow(nil), rows...)
	}
	return c
}

// Указатели (*int, *string) внутри моделей не изменяются на месте, поэтому
// достаточно копировать срезы.
func copyTournament(t models.Tournament) models.Tournament {
	t.Rounds = append([]models.RoundDescriptor(nil), t.Rounds...)
	t.Participants, t.Groups, t.Standings, t.GroupStandings, t.Matches = nil, nil, nil, nil, nil
	return t
}

func copyMatch(m models.Match) models.Match {
	if m.Sets != nil {
		m.Sets = append([]models.SetScore(nil), m.Sets...)
	}
	return m
}

func intPtr(v int) *int {
	return &v
}

func sameGroup(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// --- tournaments ---

type memoryTournamentRepository struct {
	s *MemoryStore
}

func (r *memoryTournamentRepository) Create(_ context.Context, exec SQLExecutor, t *models.Tournament) error {
	defer r.s.acquire(exec)()
	st := &r.s.state
	st.nextTournamentID++
	t.ID = st.nextTournamentID
	t.TotalParticipants = 0
	t.CreatedAt = time.Now().UTC()
	st.tournaments[t.ID] = copyTournament(*t)
	return nil
}

func (r *memoryTournamentRepository) GetByID(_ context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	defer r.s.acquire(exec)()
	t, ok := r.s.state.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	out := copyTournament(t)
	return &out, nil
}

// GetForUpdate relies on RunInTx holding the store lock.
func (r *memoryTournamentRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *memoryTournamentRepository) List(_ context.Context, exec SQLExecutor, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	defer r.s.acquire(exec)()
	tournaments := make([]*models.Tournament, 0)
	for _, t := range r.s.state.tournaments {
		if filter.Format != nil && t.Format != *filter.Format {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out := copyTournament(t)
		tournaments = append(tournaments, &out)
	}
	sort.Slice(tournaments, func(i, j int) bool { return tournaments[i].ID > tournaments[j].ID })

	if filter.Offset > 0 {
		if filter.Offset >= len(tournaments) {
			return []*models.Tournament{}, nil
		}
		tournaments = tournaments[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(tournaments) {
		tournaments = tournaments[:filter.Limit]
	}
	return tournaments, nil
}

// update применяет fn к турниру, если его статус входит в from (пустой from = любой).
func (r *memoryTournamentRepository) update(exec SQLExecutor, id int, from []models.TournamentStatus, fn func(t *models.Tournament) error) error {
	defer r.s.acquire(exec)()
	t, ok := r.s.state.tournaments[id]
	if !ok {
		return ErrTournamentNotFound
	}
	if len(from) > 0 {
		allowed := false
		for _, s := range from {
			if t.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrTournamentStatusMismatch
		}
	}
	if err := fn(&t); err != nil {
		return err
	}
	r.s.state.tournaments[id] = t
	return nil
}

func (r *memoryTournamentRepository) UpdateStatus(_ context.Context, exec SQLExecutor, id int, from []models.TournamentStatus, to models.TournamentStatus) error {
	if len(from) == 0 {
		return ErrTournamentStatusMismatch
	}
	return r.update(exec, id, from, func(t *models.Tournament) error {
		t.Status = to
		return nil
	})
}

func (r *memoryTournamentRepository) Start(_ context.Context, exec SQLExecutor, id int, rounds []models.RoundDescriptor, startedAt time.Time) error {
	return r.update(exec, id, []models.TournamentStatus{models.StatusRegistrationClosed}, func(t *models.Tournament) error {
		t.Status = models.StatusInProgress
		t.Rounds = append([]models.RoundDescriptor(nil), rounds...)
		t.StartedAt = &startedAt
		return nil
	})
}

func (r *memoryTournamentRepository) SetRounds(_ context.Context, exec SQLExecutor, id int, rounds []models.RoundDescriptor) error {
	return r.update(exec, id, nil, func(t *models.Tournament) error {
		t.Rounds = append([]models.RoundDescriptor(nil), rounds...)
		return nil
	})
}

func (r *memoryTournamentRepository) Finalize(_ context.Context, exec SQLExecutor, id int, outcome models.Outcome, completedAt time.Time) error {
	return r.update(exec, id, []models.TournamentStatus{models.StatusInProgress}, func(t *models.Tournament) error {
		t.Status = models.StatusCompleted
		t.Outcome = outcome
		t.CompletedAt = &completedAt
		return nil
	})
}

func (r *memoryTournamentRepository) IncrementParticipants(_ context.Context, exec SQLExecutor, id int) error {
	return r.update(exec, id, []models.TournamentStatus{models.StatusRegistrationOpen}, func(t *models.Tournament) error {
		if t.TotalParticipants >= t.Config.MaxParticipants {
			return ErrTournamentFull
		}
		t.TotalParticipants++
		return nil
	})
}

func (r *memoryTournamentRepository) DecrementParticipants(_ context.Context, exec SQLExecutor, id int) error {
	return r.update(exec, id, nil, func(t *models.Tournament) error {
		if t.TotalParticipants == 0 {
			return ErrTournamentNotFound
		}
		t.TotalParticipants--
		return nil
	})
}

func (r *memoryTournamentRepository) Delete(_ context.Context, exec SQLExecutor, id int) error {
	defer r.s.acquire(exec)()
	st := &r.s.state
	if _, ok := st.tournaments[id]; !ok {
		return ErrTournamentNotFound
	}
	delete(st.tournaments, id)
	delete(st.participants, id)
	delete(st.standings, id)
	for matchID, m := range st.matches {
		if m.TournamentID == id {
			delete(st.matches, matchID)
		}
	}
	return nil
}

// --- participants ---

type memoryParticipantRepository struct {
	s *MemoryStore
}

func (r *memoryParticipantRepository) Add(_ context.Context, exec SQLExecutor, p *models.Participant) error {
	defer r.s.acquire(exec)()
	st := &r.s.state
	if _, ok := st.tournaments[p.TournamentID]; !ok {
		return ErrParticipantTournamentInvalid
	}

	p.Status = models.ParticipantRegistered
	p.Seed, p.GroupLabel = nil, nil
	p.RegisteredAt = time.Now().UTC()

	list := st.participants[p.TournamentID]
	for i, existing := range list {
		if existing.ParticipantID != p.ParticipantID {
			continue
		}
		if existing.Status != models.ParticipantWithdrawn {
			return ErrParticipantConflict
		}
		// Повторная регистрация встает в конец очереди, как registered_at = NOW() в postgres.
		list = append(list[:i:i], list[i+1:]...)
		break
	}
	st.participants[p.TournamentID] = append(list, *p)
	return nil
}

func (r *memoryParticipantRepository) Get(_ context.Context, exec SQLExecutor, tournamentID, participantID int) (*models.Participant, error) {
	defer r.s.acquire(exec)()
	for _, p := range r.s.state.participants[tournamentID] {
		if p.ParticipantID == participantID {
			out := p
			return &out, nil
		}
	}
	return nil, ErrParticipantNotFound
}

func (r *memoryParticipantRepository) ListByTournament(_ context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.ParticipantStatus) ([]*models.Participant, error) {
	defer r.s.acquire(exec)()
	participants := make([]*models.Participant, 0)
	for _, p := range r.s.state.participants[tournamentID] {
		if statusFilter != nil && p.Status != *statusFilter {
			continue
		}
		out := p
		participants = append(participants, &out)
	}
	return participants, nil
}

func (r *memoryParticipantRepository) Withdraw(_ context.Context, exec SQLExecutor, tournamentID, participantID int) error {
	defer r.s.acquire(exec)()
	list := r.s.state.participants[tournamentID]
	for i := range list {
		if list[i].ParticipantID == participantID && list[i].Status == models.ParticipantRegistered {
			list[i].Status = models.ParticipantWithdrawn
			list[i].Seed, list[i].GroupLabel = nil, nil
			return nil
		}
	}
	return ErrParticipantNotFound
}

func (r *memoryParticipantRepository) UpdateSeeds(_ context.Context, exec SQLExecutor, tournamentID int, seeds map[int]int) error {
	defer r.s.acquire(exec)()
	list := r.s.state.participants[tournamentID]
	for i := range list {
		if seed, ok := seeds[list[i].ParticipantID]; ok {
			list[i].Seed = intPtr(seed)
		}
	}
	return nil
}

func (r *memoryParticipantRepository) UpdateGroups(_ context.Context, exec SQLExecutor, tournamentID int, groups map[string][]int) error {
	defer r.s.acquire(exec)()
	groupOf := make(map[int]string)
	for label, members := range groups {
		for _, id := range members {
			groupOf[id] = label
		}
	}
	list := r.s.state.participants[tournamentID]
	for i := range list {
		if label, ok := groupOf[list[i].ParticipantID]; ok {
			l := label
			list[i].GroupLabel = &l
		}
	}
	return nil
}

// --- matches ---

type memoryMatchRepository struct {
	s *MemoryStore
}

func (r *memoryMatchRepository) create(m *models.Match) error {
	st := &r.s.state
	if _, ok := st.tournaments[m.TournamentID]; !ok {
		return ErrMatchTournamentInvalid
	}
	if m.Phase != models.PhaseLadder {
		for _, existing := range st.matches {
			if existing.TournamentID == m.TournamentID && existing.Phase == m.Phase && existing.Round == m.Round &&
				existing.Position == m.Position && sameGroup(existing.GroupLabel, m.GroupLabel) {
				return ErrMatchSlotConflict
			}
		}
	}
	st.nextMatchID++
	m.ID = st.nextMatchID
	m.CreatedAt = time.Now().UTC()
	st.matches[m.ID] = copyMatch(*m)
	return nil
}

func (r *memoryMatchRepository) Create(_ context.Context, exec SQLExecutor, m *models.Match) error {
	defer r.s.acquire(exec)()
	return r.create(m)
}

func (r *memoryMatchRepository) BatchCreate(_ context.Context, exec SQLExecutor, matches []*models.Match) error {
	defer r.s.acquire(exec)()
	for _, m := range matches {
		if err := r.create(m); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryMatchRepository) GetByID(_ context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	defer r.s.acquire(exec)()
	m, ok := r.s.state.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	out := copyMatch(m)
	return &out, nil
}

func (r *memoryMatchRepository) ListByTournament(_ context.Context, exec SQLExecutor, tournamentID int, filter MatchFilter) ([]*models.Match, error) {
	defer r.s.acquire(exec)()
	matches := make([]*models.Match, 0)
	for _, m := range r.s.state.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if filter.Round != nil && m.Round != *filter.Round {
			continue
		}
		if filter.GroupLabel != nil && (m.GroupLabel == nil || *m.GroupLabel != *filter.GroupLabel) {
			continue
		}
		if filter.Phase != nil && m.Phase != *filter.Phase {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if filter.ParticipantID != nil && !m.HasParticipant(*filter.ParticipantID) {
			continue
		}
		out := copyMatch(m)
		matches = append(matches, &out)
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		ga, gb := "", ""
		if a.GroupLabel != nil {
			ga = "\x00" + *a.GroupLabel
		}
		if b.GroupLabel != nil {
			gb = "\x00" + *b.GroupLabel
		}
		if ga != gb {
			return ga < gb
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID < b.ID
	})
	return matches, nil
}

func (r *memoryMatchRepository) count(tournamentID int, phase *models.MatchPhase, keep func(models.Match) bool) int {
	count := 0
	for _, m := range r.s.state.matches {
		if m.TournamentID != tournamentID || (phase != nil && m.Phase != *phase) {
			continue
		}
		if keep(m) {
			count++
		}
	}
	return count
}

func (r *memoryMatchRepository) CountByTournament(_ context.Context, exec SQLExecutor, tournamentID int, phase *models.MatchPhase) (int, error) {
	defer r.s.acquire(exec)()
	return r.count(tournamentID, phase, func(models.Match) bool { return true }), nil
}

func (r *memoryMatchRepository) CountUnresolved(_ context.Context, exec SQLExecutor, tournamentID int, phase *models.MatchPhase) (int, error) {
	defer r.s.acquire(exec)()
	return r.count(tournamentID, phase, func(m models.Match) bool {
		return m.Status == models.MatchPending || m.Status == models.MatchInProgress
	}), nil
}

func (r *memoryMatchRepository) MaxRound(_ context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	defer r.s.acquire(exec)()
	maxRound := 0
	for _, m := range r.s.state.matches {
		if m.TournamentID == tournamentID && m.Round > maxRound {
			maxRound = m.Round
		}
	}
	return maxRound, nil
}

func (r *memoryMatchRepository) Start(_ context.Context, exec SQLExecutor, id int) error {
	defer r.s.acquire(exec)()
	m, ok := r.s.state.matches[id]
	if !ok {
		return ErrMatchNotFound
	}
	if m.Status != models.MatchPending || !m.Ready() {
		return ErrMatchNotPending
	}
	m.Status = models.MatchInProgress
	r.s.state.matches[id] = m
	return nil
}

func (r *memoryMatchRepository) Complete(_ context.Context, exec SQLExecutor, res MatchResult) error {
	defer r.s.acquire(exec)()
	m, ok := r.s.state.matches[res.MatchID]
	if !ok {
		return ErrMatchNotFound
	}
	if m.Status != models.MatchPending && m.Status != models.MatchInProgress {
		return ErrMatchAlreadyResolved
	}
	completedAt := res.CompletedAt
	m.WinnerID = intPtr(res.WinnerID)
	m.ScoreA, m.ScoreB = res.ScoreA, res.ScoreB
	m.Sets = append([]models.SetScore(nil), res.Sets...)
	if len(m.Sets) == 0 {
		m.Sets = nil
	}
	m.Status = res.Status
	m.CompletedAt = &completedAt
	r.s.state.matches[res.MatchID] = m
	return nil
}

func (r *memoryMatchRepository) AssignSlot(_ context.Context, exec SQLExecutor, tournamentID, round, position int, side models.Side, participantID int, name string) error {
	defer r.s.acquire(exec)()
	for id, m := range r.s.state.matches {
		if m.TournamentID != tournamentID || m.Phase != models.PhaseKnockout || m.IsThirdPlace ||
			m.Round != round || m.Position != position {
			continue
		}
		if side == models.SideA {
			if m.ParticipantAID != nil {
				return ErrMatchSlotUnavailable
			}
			m.ParticipantAID, m.ParticipantA = intPtr(participantID), name
		} else {
			if m.ParticipantBID != nil {
				return ErrMatchSlotUnavailable
			}
			m.ParticipantBID, m.ParticipantB = intPtr(participantID), name
		}
		r.s.state.matches[id] = m
		return nil
	}
	return ErrMatchSlotUnavailable
}

func (r *memoryMatchRepository) AssignThirdPlaceSlot(_ context.Context, exec SQLExecutor, tournamentID, participantID int, name string) error {
	defer r.s.acquire(exec)()
	for id, m := range r.s.state.matches {
		if m.TournamentID != tournamentID || !m.IsThirdPlace {
			continue
		}
		switch {
		case m.ParticipantAID == nil:
			m.ParticipantAID, m.ParticipantA = intPtr(participantID), name
		case m.ParticipantBID == nil:
			m.ParticipantBID, m.ParticipantB = intPtr(participantID), name
		default:
			return ErrMatchSlotUnavailable
		}
		r.s.state.matches[id] = m
		return nil
	}
	return ErrMatchSlotUnavailable
}

func (r *memoryMatchRepository) DeleteByTournament(_ context.Context, exec SQLExecutor, tournamentID int) error {
	defer r.s.acquire(exec)()
	for id, m := range r.s.state.matches {
		if m.TournamentID == tournamentID {
			delete(r.s.state.matches, id)
		}
	}
	return nil
}

// --- standings ---

type memoryStandingRepository struct {
	s *MemoryStore
}

func (r *memoryStandingRepository) InitRows(_ context.Context, exec SQLExecutor, rows []models.StandingRow) error {
	defer r.s.acquire(exec)()
	for _, row := range rows {
		list := r.s.state.standings[row.TournamentID]
		exists := false
		for _, existing := range list {
			if existing.ParticipantID == row.ParticipantID && sameGroup(existing.GroupLabel, row.GroupLabel) {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		fresh := models.StandingRow{
			TournamentID:  row.TournamentID,
			GroupLabel:    row.GroupLabel,
			ParticipantID: row.ParticipantID,
			Name:          row.Name,
			UpdatedAt:     time.Now().UTC(),
		}
		r.s.state.standings[row.TournamentID] = append(list, fresh)
	}
	return nil
}

func (r *memoryStandingRepository) ApplyDelta(_ context.Context, exec SQLExecutor, tournamentID int, d StandingDelta) error {
	defer r.s.acquire(exec)()
	list := r.s.state.standings[tournamentID]
	for i := range list {
		if list[i].ParticipantID != d.ParticipantID || !sameGroup(list[i].GroupLabel, d.GroupLabel) {
			continue
		}
		list[i].Played++
		list[i].Won += d.Won
		list[i].Lost += d.Lost
		list[i].SetsWon += d.SetsWon
		list[i].SetsLost += d.SetsLost
		list[i].Points += d.Points
		list[i].UpdatedAt = time.Now().UTC()
		return nil
	}
	return ErrStandingNotFound
}

func (r *memoryStandingRepository) ListByTournament(_ context.Context, exec SQLExecutor, tournamentID int) ([]models.StandingRow, error) {
	defer r.s.acquire(exec)()
	return append([]models.StandingRow{}, r.s.state.standings[tournamentID]...), nil
}

func (r *memoryStandingRepository) DeleteByTournament(_ context.Context, exec SQLExecutor, tournamentID int) error {
	defer r.s.acquire(exec)()
	delete(r.s.state.standings, tournamentID)
	return nil
}
