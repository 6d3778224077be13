package route_test

import (
	"testing"

	"github.com/aussiebroadwan/reels/pkg/session/route"
	"github.com/stretchr/testify/require"
)

func TestParamsConsumedOnce(t *testing.T) {
	p := route.NewParams(map[string]any{route.ParamShowRegistrationModal: true})

	require.True(t, p.ConsumeFlag(route.ParamShowRegistrationModal))
	require.False(t, p.ConsumeFlag(route.ParamShowRegistrationModal))

	var zero route.Params
	_, ok := zero.Consume("anything")
	require.False(t, ok)
}

func TestMountDropsAfterUnmount(t *testing.T) {
	var got []route.Route
	m := route.NewMount(route.NavigatorFunc(func(to route.Route, _ route.Params) {
		got = append(got, to)
	}))

	m.Reset(route.Home, route.Params{})
	m.Unmount()
	require.False(t, m.Mounted())
	m.Reset(route.Login, route.Params{})
	require.Equal(t, []route.Route{route.Home}, got)
}
