package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"confcentral/internal/adapters/cache"
	"confcentral/internal/domain"
)

func newSessionFixture(t *testing.T) (*mockSessionRepo, *mockConferenceRepo, domain.AnnouncementCache, domain.SessionService, string) {
	t.Helper()
	sessions := newMockSessionRepo()
	conferences := newMockConferenceRepo()
	conferences.conferences[domain.ConferenceRef{OrganizerID: "org-1", ID: 42}] = &domain.Conference{
		ID:          42,
		OrganizerID: "org-1",
		Name:        "GopherCon",
	}
	announcements := cache.NewMemoryAnnouncementCache()
	svc := NewSessionService(sessions, conferences, NewSpeakerService(newMockSpeakerRepo()), announcements, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return sessions, conferences, announcements, svc, testConferenceKey("org-1", 42).Encode()
}

func TestSessionService_Create(t *testing.T) {
	ctx := context.Background()
	speaker := &domain.SpeakerInput{Name: "Ada", Age: 36, Specialization: "Analytical Engines"}

	t.Run("organizer creates a session under the conference", func(t *testing.T) {
		sessions, _, _, svc, confToken := newSessionFixture(t)

		created, token, err := svc.Create(ctx, "org-1", confToken, &domain.SessionInput{
			Name:          "Concurrency Patterns",
			TypeOfSession: domain.SessionTypeWorkshop,
			StartTime:     9,
			Duration:      60,
			Speaker:       speaker,
		})
		require.NoError(t, err)
		require.Equal(t, confToken, created.ConferenceKey)
		require.Equal(t, "Ada", created.SpeakerName)
		require.NotEmpty(t, token)

		// The returned token resolves back to the stored session.
		key, err := domain.DecodeKey(token)
		require.NoError(t, err)
		conferenceKey, sessionID, err := domain.SessionKeyParts(key)
		require.NoError(t, err)
		require.Equal(t, confToken, conferenceKey)
		require.Contains(t, sessions.sessions, domain.SessionRef{ConferenceKey: conferenceKey, ID: sessionID})
	})

	t.Run("missing name is invalid", func(t *testing.T) {
		_, _, _, svc, confToken := newSessionFixture(t)
		_, _, err := svc.Create(ctx, "org-1", confToken, &domain.SessionInput{Speaker: speaker})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing speaker is invalid", func(t *testing.T) {
		_, _, _, svc, confToken := newSessionFixture(t)
		_, _, err := svc.Create(ctx, "org-1", confToken, &domain.SessionInput{Name: "Keynote"})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("non-organizer is rejected", func(t *testing.T) {
		sessions, _, _, svc, confToken := newSessionFixture(t)
		_, _, err := svc.Create(ctx, "someone-else", confToken, &domain.SessionInput{Name: "Keynote", Speaker: speaker})
		require.ErrorIs(t, err, domain.ErrUnauthorized)
		require.Empty(t, sessions.sessions)
	})

	t.Run("unknown conference token is not found", func(t *testing.T) {
		_, _, _, svc, _ := newSessionFixture(t)
		missing := testConferenceKey("org-1", 999).Encode()
		_, _, err := svc.Create(ctx, "org-1", missing, &domain.SessionInput{Name: "Keynote", Speaker: speaker})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSessionService_FeaturedSpeaker(t *testing.T) {
	ctx := context.Background()
	speaker := &domain.SpeakerInput{Name: "Ada", Age: 36, Specialization: "Analytical Engines"}

	t.Run("single session does not feature the speaker", func(t *testing.T) {
		_, _, _, svc, confToken := newSessionFixture(t)

		_, _, err := svc.Create(ctx, "org-1", confToken, &domain.SessionInput{Name: "A", StartTime: 9, Speaker: speaker})
		require.NoError(t, err)

		_, ok, err := svc.FeaturedSpeaker(ctx)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("second session caches the announcement", func(t *testing.T) {
		_, _, _, svc, confToken := newSessionFixture(t)

		_, _, err := svc.Create(ctx, "org-1", confToken, &domain.SessionInput{Name: "A", StartTime: 9, Speaker: speaker})
		require.NoError(t, err)
		_, _, err = svc.Create(ctx, "org-1", confToken, &domain.SessionInput{Name: "B", StartTime: 11, Speaker: speaker})
		require.NoError(t, err)

		message, ok, err := svc.FeaturedSpeaker(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "Featured speaker Ada is hosting: A, B", message)

		// An unrelated session does not clear the announcement.
		other := &domain.SpeakerInput{Name: "Grace", Age: 45, Specialization: "Compilers"}
		_, _, err = svc.Create(ctx, "org-1", confToken, &domain.SessionInput{Name: "C", StartTime: 13, Speaker: other})
		require.NoError(t, err)

		message, ok, err = svc.FeaturedSpeaker(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "Featured speaker Ada is hosting: A, B", message)
	})

	t.Run("sessions in another conference do not count", func(t *testing.T) {
		_, conferences, _, svc, confToken := newSessionFixture(t)
		conferences.conferences[domain.ConferenceRef{OrganizerID: "org-1", ID: 43}] = &domain.Conference{
			ID:          43,
			OrganizerID: "org-1",
			Name:        "Other Con",
		}
		otherToken := testConferenceKey("org-1", 43).Encode()

		_, _, err := svc.Create(ctx, "org-1", confToken, &domain.SessionInput{Name: "A", StartTime: 9, Speaker: speaker})
		require.NoError(t, err)
		_, _, err = svc.Create(ctx, "org-1", otherToken, &domain.SessionInput{Name: "B", StartTime: 11, Speaker: speaker})
		require.NoError(t, err)

		_, ok, err := svc.FeaturedSpeaker(ctx)
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestSessionService_ListByConference(t *testing.T) {
	ctx := context.Background()
	speaker := &domain.SpeakerInput{Name: "Ada", Age: 36, Specialization: "Analytical Engines"}

	_, _, _, svc, confToken := newSessionFixture(t)
	_, _, err := svc.Create(ctx, "org-1", confToken, &domain.SessionInput{Name: "A", TypeOfSession: domain.SessionTypeLecture, StartTime: 9, Speaker: speaker})
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, "org-1", confToken, &domain.SessionInput{Name: "B", TypeOfSession: domain.SessionTypeWorkshop, StartTime: 11, Speaker: speaker})
	require.NoError(t, err)

	all, err := svc.ListByConference(ctx, confToken, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	workshops, err := svc.ListByConference(ctx, confToken, domain.SessionTypeWorkshop)
	require.NoError(t, err)
	require.Len(t, workshops, 1)
	require.Equal(t, "B", workshops[0].Name)

	_, err = svc.ListByConference(ctx, testConferenceKey("org-1", 999).Encode(), "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionService_ListAll(t *testing.T) {
	ctx := context.Background()
	sessions, _, _, svc, confToken := newSessionFixture(t)

	sessions.sessions[domain.SessionRef{ConferenceKey: confToken, ID: 1}] = &domain.Session{ID: 1, ConferenceKey: confToken, Name: "A", StartTime: 9}
	sessions.sessions[domain.SessionRef{ConferenceKey: "other-conf", ID: 2}] = &domain.Session{ID: 2, ConferenceKey: "other-conf", Name: "B", StartTime: 11}

	got, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestSessionService_ListBySpeaker(t *testing.T) {
	ctx := context.Background()

	t.Run("crosses conference boundaries", func(t *testing.T) {
		sessions, _, _, _, _ := newSessionFixture(t)
		speakers := newMockSpeakerRepo()
		speakers.speakers["Ada"] = &domain.Speaker{Name: "Ada"}
		svc := NewSessionService(sessions, newMockConferenceRepo(), NewSpeakerService(speakers),
			cache.NewMemoryAnnouncementCache(), slog.New(slog.NewTextHandler(io.Discard, nil)))

		sessions.sessions[domain.SessionRef{ConferenceKey: "conf-a", ID: 1}] = &domain.Session{ID: 1, ConferenceKey: "conf-a", Name: "A", SpeakerName: "Ada", StartTime: 9}
		sessions.sessions[domain.SessionRef{ConferenceKey: "conf-b", ID: 2}] = &domain.Session{ID: 2, ConferenceKey: "conf-b", Name: "B", SpeakerName: "Ada", StartTime: 11}
		sessions.sessions[domain.SessionRef{ConferenceKey: "conf-a", ID: 3}] = &domain.Session{ID: 3, ConferenceKey: "conf-a", Name: "C", SpeakerName: "Grace", StartTime: 13}

		got, err := svc.ListBySpeaker(ctx, "Ada")
		require.NoError(t, err)
		require.Len(t, got, 2)
	})

	t.Run("unknown speaker without payload is invalid", func(t *testing.T) {
		_, _, _, svc, _ := newSessionFixture(t)
		_, err := svc.ListBySpeaker(ctx, "Nobody")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSessionService_ListUpcoming(t *testing.T) {
	ctx := context.Background()
	sessions, _, _, svc, confToken := newSessionFixture(t)

	sessions.sessions[domain.SessionRef{ConferenceKey: confToken, ID: 1}] = &domain.Session{ID: 1, ConferenceKey: confToken, Name: "Early Workshop", TypeOfSession: domain.SessionTypeWorkshop, StartTime: 4}
	sessions.sessions[domain.SessionRef{ConferenceKey: confToken, ID: 2}] = &domain.Session{ID: 2, ConferenceKey: confToken, Name: "Early Lecture", TypeOfSession: domain.SessionTypeLecture, StartTime: 4}
	sessions.sessions[domain.SessionRef{ConferenceKey: confToken, ID: 3}] = &domain.Session{ID: 3, ConferenceKey: confToken, Name: "Late Workshop", TypeOfSession: domain.SessionTypeWorkshop, StartTime: 9}

	got, err := svc.ListUpcoming(ctx, 7, domain.SessionTypeLecture)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Early Workshop", got[0].Name)

	_, err = svc.ListUpcoming(ctx, 0, domain.SessionTypeLecture)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
