package generator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowbase/internal/config"
	"knowbase/internal/domain"
	"knowbase/internal/generator"
	"knowbase/internal/port"
)

func TestNewGenerator_UnknownProvider(t *testing.T) {
	_, err := generator.NewGenerator(&config.LLMProviderConfig{Provider: "nope"}, generator.Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown generator provider: nope")
}

func TestProviders_IncludesMock(t *testing.T) {
	assert.Contains(t, generator.Providers(), "mock")
}

func TestFromConfig_LegacyFlatFields(t *testing.T) {
	gen, err := generator.FromConfig(&config.LLMConfig{Provider: "mock"})
	require.NoError(t, err)

	out, err := gen.Generate(context.Background(), sampleInput)

	require.NoError(t, err)
	assert.Equal(t, domain.TestSourceMock, out.Source)
	assert.NotEmpty(t, out.Questions)
}

func TestFromConfig_SecondaryErrors(t *testing.T) {
	_, err := generator.FromConfig(&config.LLMConfig{
		Primary:   config.LLMProviderConfig{Provider: "mock"},
		Secondary: config.LLMProviderConfig{Provider: "missing"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "secondary generator")
}

func TestRegisterProvider(t *testing.T) {
	generator.RegisterProvider("factory-test", func(cfg *config.LLMProviderConfig, _ generator.Options) (port.TestGenerator, error) {
		return generator.NewMockGenerator(), nil
	})

	gen, err := generator.NewGenerator(&config.LLMProviderConfig{Provider: "factory-test"}, generator.Options{})

	require.NoError(t, err)
	assert.NotNil(t, gen)
	assert.Contains(t, generator.Providers(), "factory-test")
}
