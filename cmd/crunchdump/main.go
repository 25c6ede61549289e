// Command crunchdump builds a small demo message, encodes it under a
// configurable serdes and integrity policy, decodes it back, and logs
// both the wire size and a JSON snapshot of the round-tripped fields.
// It exists to exercise the codec end to end from outside its own test
// suite, the way a smoke-test binary would.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/sam-w-yellin/crunch"
	"github.com/sam-w-yellin/crunch/introspect"
)

// Profile is the demo message: a required id, an optional name capped
// at the configured size, and a bounded array of integer tags.
type Profile struct {
	crunch.BaseMessage
	ID   *crunch.ScalarField[int32]
	Name *crunch.StringField
	Tags *crunch.ArrayField[int32]
}

func (p *Profile) MessageID() crunch.MessageId { return 1 }
func (p *Profile) Fields() []crunch.Field      { return []crunch.Field{p.ID, p.Name, p.Tags} }

func newProfile(cfg schemaConfig) *Profile {
	p := &Profile{
		ID:   crunch.NewScalarField(1, crunch.Required{}, crunch.NewScalar[int32](crunch.Positive[int32]())),
		Name: crunch.NewStringField(2, crunch.Optional{}, crunch.NewStringValue(cfg.NameMaxSize, nil, nil)),
		Tags: crunch.NewArrayField[int32](3, cfg.TagsMaxSize),
	}
	crunch.MustHaveUniqueFieldIDs(p.Fields())
	return p
}

func resolveSerdes(format string) (crunch.Serdes, error) {
	switch format {
	case "packed":
		return crunch.NewStaticLayout(crunch.FormatPacked), nil
	case "aligned4":
		return crunch.NewStaticLayout(crunch.FormatAligned4), nil
	case "aligned8":
		return crunch.NewStaticLayout(crunch.FormatAligned8), nil
	case "tlv":
		return crunch.NewTLVLayout(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func resolveIntegrity(name string) (crunch.Integrity, error) {
	switch name {
	case "none":
		return crunch.NoIntegrity{}, nil
	case "parity":
		return crunch.ParityIntegrity{}, nil
	case "crc16":
		return crunch.CRC16Integrity{}, nil
	default:
		return nil, fmt.Errorf("unknown integrity %q", name)
	}
}

func main() {
	configPath := flag.String("config", "", "path to a crunchdump TOML config")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("cmd", "crunchdump").Logger()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal().Err(err).Msg("crunchdump failed")
	}
}

func run(configPath string, logger zerolog.Logger) error {
	cfg, err := loadSchemaConfig(configPath)
	if err != nil {
		return err
	}
	serdes, err := resolveSerdes(cfg.Format)
	if err != nil {
		return err
	}
	integrity, err := resolveIntegrity(cfg.Integrity)
	if err != nil {
		return err
	}
	logger.Info().Str("format", cfg.Format).Str("integrity", cfg.Integrity).Msg("resolved codec policy")

	src := newProfile(cfg)
	if err := src.ID.Set(7); err != nil {
		return err
	}
	if err := src.Name.Set("ada"); err != nil {
		return err
	}
	for _, tag := range []int32{1, 2, 3} {
		if err := src.Tags.Add(tag); err != nil {
			return err
		}
	}

	buf := crunch.GetBuffer(serdes, integrity, src)
	if err := crunch.Serialize(serdes, integrity, src, buf); err != nil {
		return err
	}
	logger.Info().Int("bytes", buf.Len()).Msg("encoded profile")

	dst := newProfile(cfg)
	if err := crunch.Deserialize(serdes, integrity, buf.Bytes(), dst); err != nil {
		return err
	}

	dump, err := introspect.Dump(dst)
	if err != nil {
		return err
	}
	logger.Info().RawJSON("profile", dump).Msg("decoded profile")
	return nil
}
