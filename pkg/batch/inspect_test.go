package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseViewArgs(t *testing.T) {
	args := ParseViewArgs("-s scenes/city.obj -vp 1 2 -3.5 -vd 0 0 -1 -vf 60 -q")
	assert.Equal(t, map[string]string{
		"s":  "scenes/city.obj",
		"vp": "1 2 -3.5",
		"vd": "0 0 -1",
		"vf": "60",
		"q":  "",
	}, args)
}

func TestParseViewArgsLeadingValues(t *testing.T) {
	args := ParseViewArgs("stray -p route.path")
	assert.Equal(t, "stray", args[""])
	assert.Equal(t, "route.path", args["p"])
}

func TestParseViewArgsRepeatedKeyAppends(t *testing.T) {
	args := ParseViewArgs("-s a.obj -vf 60 -s b.obj")
	assert.Equal(t, "a.obj b.obj", args["s"])
	assert.Equal(t, "60", args["vf"])

	args = ParseViewArgs("lead - more")
	assert.Equal(t, "lead more", args[""])
}

func TestInspectWarnsOnMissingScene(t *testing.T) {
	dir := writeViews(t, map[string]string{
		"good.view": "-s city.obj\n-vf 45\n",
		"bad.view":  "-vf 45\n",
	})
	gen, err := New(Config{Executable: "x", SceneDir: dir, Views: []string{"good.view", "bad.view"}})
	require.NoError(t, err)

	reports, err := gen.Inspect(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "good", reports[0].Name)
	assert.Equal(t, "-s city.obj-vf 45", reports[0].Flags)
	assert.Equal(t, "city.obj-vf 45", reports[0].Args["s"])
	assert.Empty(t, reports[0].Warnings)

	assert.Equal(t, "bad", reports[1].Name)
	assert.Contains(t, reports[1].Warnings, "missing scene argument -s")
}
