package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-posemetrics"
	"github.com/swdee/go-posemetrics/config"
)

func TestLoadScenes(t *testing.T) {

	scenes, err := loadScenes(filepath.Join("testdata", "scenes.json"))
	require.NoError(t, err)
	require.Len(t, scenes, 1)

	s := scenes[0]
	assert.Equal(t, "frame-000", s.ID)
	require.NoError(t, s.GroundTruth.Validate())
	require.NoError(t, s.Prediction.Validate())

	assert.Equal(t, 1, s.GroundTruth.Len())
	assert.Equal(t, 2, s.Prediction.Len())
	assert.False(t, s.GroundTruth.Box.Rotated())
	assert.Equal(t, []float64{0.1, 0}, s.Prediction.Box.Heading)
	assert.Equal(t, []posemetrics.Visibility{posemetrics.VisibleUsable, posemetrics.Invisible},
		s.Prediction.Keypoints.Visibility[0])
}

func TestLoadScenesErrors(t *testing.T) {

	_, err := loadScenes(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenes file")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": 1}`), 0o600))

	_, err = loadScenes(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse scenes JSON")
}

func TestResolveConfig(t *testing.T) {

	cfg, err := resolveConfig(config.PresetLaser)
	require.NoError(t, err)
	assert.Len(t, cfg.SrcOrder, 14)

	_, err = resolveConfig("missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat config file")

	_, err = resolveConfig("unknown")
	assert.ErrorIs(t, err, posemetrics.ErrConfig)
}

func TestRunEval(t *testing.T) {

	opts := evalOptions{
		Config:     filepath.Join("testdata", "config.json"),
		ScenesPath: filepath.Join("testdata", "scenes.json"),
		Workers:    2,
		Quiet:      true,
		CheckBoxes: true,
	}

	var out bytes.Buffer
	require.NoError(t, runEval(context.Background(), opts, &out))

	lines := out.String()
	// left shoulder is 1 off, right shoulder exact, object scale 4
	assert.Contains(t, lines, "MPJPE/SHOULDERS 0.500000\n")
	assert.Contains(t, lines, "MPJPE/LEFT 1.000000\n")
	assert.Contains(t, lines, "PCK/SHOULDERS @ 0.10 0.500000\n")
	assert.Contains(t, lines, "PEM/SHOULDERS ")
	assert.Contains(t, lines, "OKS/LEFT AP ")

	// the camera preset expects 14 keypoint types
	opts.Config = config.PresetCamera
	err := runEval(context.Background(), opts, &out)
	assert.ErrorIs(t, err, posemetrics.ErrShape)
}
