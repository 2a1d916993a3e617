package cli

var (
	PrintQuickCheck      = printQuickCheck
	ParseQuickCheckInput = parseQuickCheckInput
	GetIndexConfig       = getIndexConfig
)
