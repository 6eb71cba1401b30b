package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/datachat/internal/pkg/errors"
)

func TestCheckIndexParams(t *testing.T) {
	require.NoError(t, checkIndexParams("idx", 3, MetricCosine, 3, MetricCosine))

	err := checkIndexParams("idx", 3, MetricCosine, 4, MetricCosine)
	require.Error(t, err)
	require.True(t, appErr.IsVectorStoreError(err))
	require.Contains(t, err.Error(), "dimension=3")
	require.Contains(t, err.Error(), "dimension=4")

	err = checkIndexParams("idx", 3, MetricCosine, 3, "dot")
	require.Error(t, err)
	require.True(t, appErr.IsVectorStoreError(err))
}
