package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"barkeep"
	"barkeep/session"
)

type payload struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestKey(t *testing.T) {
	should.Equal(t, "abc_recipe", session.Key("abc", session.KindRecipe))
	should.Equal(t, "abc_training_guide", session.Key("abc", session.KindTrainingGuide))
}

func TestNewID(t *testing.T) {
	a, b := session.NewID(), session.NewID()
	should.NotEqual(t, a, b)
	u, err := uuid.Parse(a.String())
	must.NoError(t, err)
	should.Equal(t, uuid.Version(4), u.Version())
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	mem := session.NewMemoryBackend()
	s := session.NewStore(mem)
	id := session.ID("s1")

	var got payload
	should.False(t, s.Get(ctx, id, session.KindRecipe, &got))

	must.NoError(t, s.Put(ctx, id, session.KindRecipe, payload{Name: "Negroni", Price: 12}))
	must.True(t, s.Get(ctx, id, session.KindRecipe, &got))
	should.Equal(t, payload{Name: "Negroni", Price: 12}, got)
	should.Equal(t, []string{"s1_recipe"}, mem.Keys())

	// kinds are independent
	should.False(t, s.Get(ctx, id, session.KindInventory, &got))

	must.NoError(t, s.Delete(ctx, id, session.KindRecipe))
	should.False(t, s.Get(ctx, id, session.KindRecipe, &got))
	must.NoError(t, s.Delete(ctx, id, session.KindRecipe))
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := session.NewStore(session.NewMemoryBackend())
	must.NoError(t, s.Put(ctx, "a", session.KindRecipe, payload{Name: "A"}))

	var got payload
	should.False(t, s.Get(ctx, "b", session.KindRecipe, &got))
}

func TestStore_BackendFailureIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := session.NewStore(session.NewMemoryBackendWithError(errors.New("connection refused")))

	var got payload
	should.False(t, s.Get(ctx, "s1", session.KindRecipe, &got))
	should.Error(t, s.Put(ctx, "s1", session.KindRecipe, payload{}))
}

func TestStore_UndecodableValueIsNotFound(t *testing.T) {
	ctx := context.Background()
	mem := session.NewMemoryBackend()
	must.NoError(t, mem.Set(ctx, "s1_recipe", []byte("{not json")))

	var got payload
	should.False(t, session.NewStore(mem).Get(ctx, "s1", session.KindRecipe, &got))
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	mem := session.NewMemoryBackend()
	s := session.NewStore(mem)
	for _, k := range session.Kinds {
		must.NoError(t, s.Put(ctx, "s1", k, payload{Name: string(k)}))
	}
	must.NoError(t, s.Put(ctx, "s2", session.KindRecipe, payload{}))

	must.NoError(t, s.Clear(ctx, "s1"))
	should.Equal(t, []string{"s2_recipe"}, mem.Keys())
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     barkeep.StoreConfig
		wantErr bool
	}{
		{name: "memory", cfg: barkeep.StoreConfig{Backend: "memory"}},
		{name: "file", cfg: barkeep.StoreConfig{Backend: "file", FileDir: t.TempDir()}},
		{name: "redis", cfg: barkeep.StoreConfig{Backend: "redis", RedisAddr: "localhost:6379"}},
		{name: "s3 without client", cfg: barkeep.StoreConfig{Backend: "s3", S3Bucket: "b"}, wantErr: true},
		{name: "unknown", cfg: barkeep.StoreConfig{Backend: "etcd"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := session.Open(tt.cfg, nil)
			if tt.wantErr {
				should.Error(t, err)
				return
			}
			must.NoError(t, err)
			should.NotNil(t, b)
		})
	}
}

func TestMissingStateError(t *testing.T) {
	err := error(&session.MissingStateError{ID: "s1", Missing: []session.Kind{session.KindRecipe, session.KindInventory}})
	should.ErrorIs(t, err, session.ErrMissingState)
	should.Equal(t, "session s1 has no recipe or inventory yet", err.Error())

	var ms *session.MissingStateError
	must.ErrorAs(t, err, &ms)
	should.True(t, ms.Has(session.KindInventory))
	should.False(t, ms.Has(session.KindChat))
}
