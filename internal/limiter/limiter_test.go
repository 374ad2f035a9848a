package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid limit only",
			cfg:     Config{Limit: 10},
			wantErr: false,
		},
		{
			name:    "valid limit and offset",
			cfg:     Config{Limit: 10, Offset: 5},
			wantErr: false,
		},
		{
			name:    "tail ignores offset (valid)",
			cfg:     Config{Tail: 10, Offset: 5},
			wantErr: false,
		},
		{
			name:    "limit and tail mutually exclusive",
			cfg:     Config{Limit: 10, Tail: 5},
			wantErr: true,
			errMsg:  "menu.rows.limit and menu.rows.tail are mutually exclusive",
		},
		{
			name:    "negative limit invalid",
			cfg:     Config{Limit: -1},
			wantErr: true,
			errMsg:  "menu.rows.limit must be non-negative",
		},
		{
			name:    "negative offset invalid",
			cfg:     Config{Offset: -1},
			wantErr: true,
			errMsg:  "menu.rows.offset must be non-negative",
		},
		{
			name:    "negative tail invalid",
			cfg:     Config{Tail: -2},
			wantErr: true,
			errMsg:  "menu.rows.tail must be non-negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate("menu.rows")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfigIsActive(t *testing.T) {
	assert.False(t, Config{}.IsActive())
	assert.True(t, Config{Limit: 1}.IsActive())
	assert.True(t, Config{Offset: 1}.IsActive())
	assert.True(t, Config{Tail: 1}.IsActive())
}

func TestApply(t *testing.T) {
	rows := []string{"a", "b", "c", "d", "e"}
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"inactive keeps everything", Config{}, rows},
		{"limit", Config{Limit: 2}, []string{"a", "b"}},
		{"offset", Config{Offset: 3}, []string{"d", "e"}},
		{"offset and limit", Config{Offset: 1, Limit: 3}, []string{"b", "c", "d"}},
		{"limit past the end", Config{Offset: 4, Limit: 10}, []string{"e"}},
		{"offset past the end", Config{Offset: 9}, []string{}},
		{"tail", Config{Tail: 2}, []string{"d", "e"}},
		{"tail ignores offset", Config{Tail: 2, Offset: 1}, []string{"d", "e"}},
		{"tail longer than input", Config{Tail: 9}, rows},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.cfg, rows))
		})
	}
}

func TestApplyEmpty(t *testing.T) {
	assert.Empty(t, Apply(Config{Limit: 3}, []int(nil)))
	assert.Empty(t, Apply(Config{Tail: 3}, []int{}))
}

func TestBounds(t *testing.T) {
	start, end := Config{Offset: 2, Limit: 2}.Bounds(11)
	assert.Equal(t, 2, start)
	assert.Equal(t, 4, end)

	start, end = Config{Tail: 4}.Bounds(11)
	assert.Equal(t, 7, start)
	assert.Equal(t, 11, end)
}
