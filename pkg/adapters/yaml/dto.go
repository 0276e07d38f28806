package yaml

// documentDTO is the top level of a rules file.
type documentDTO struct {
	Root     string                `mapstructure:"root"`
	Builders map[string]builderDTO `mapstructure:"builders"`
}

// builderDTO describes one rule set.
type builderDTO struct {
	Extends      string              `mapstructure:"extends"`
	Severity     string              `mapstructure:"severity"`
	LogType      string              `mapstructure:"log_type"`
	Primary      string              `mapstructure:"primary"`
	SearchKey    string              `mapstructure:"search_key"`
	DeleteKey    string              `mapstructure:"delete_key"`
	Fields       []fieldDTO          `mapstructure:"fields"`
	Associations []associationDTO    `mapstructure:"associations"`
	Callbacks    map[string][]string `mapstructure:"callbacks"`
}

// fieldDTO describes a field. A bare string in the fields list is shorthand for {name: ...}.
type fieldDTO struct {
	Name    string   `mapstructure:"name"`
	Type    string   `mapstructure:"type"`
	Aliases []string `mapstructure:"aliases"`
	// Required is either a boolean or the name of a scope predicate method.
	Required any  `mapstructure:"required"`
	Ignore   bool `mapstructure:"ignore"`

	// Object fields only.
	Builder   string `mapstructure:"builder"`
	Deletable bool   `mapstructure:"deletable"`
	RejectKey string `mapstructure:"reject_key"`
}

type associationDTO struct {
	Name      string `mapstructure:"name"`
	Many      bool   `mapstructure:"many"`
	Builder   string `mapstructure:"builder"`
	Deletable bool   `mapstructure:"deletable"`
	RejectKey string `mapstructure:"reject_key"`
}
