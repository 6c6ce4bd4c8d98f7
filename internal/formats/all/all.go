// Package all registers every source adapter with the formats registry.
package all

import (
	_ "github.com/mind-engage/mindengage-qbank/internal/formats/docx"
	_ "github.com/mind-engage/mindengage-qbank/internal/formats/tabular"
	_ "github.com/mind-engage/mindengage-qbank/internal/formats/text"
	_ "github.com/mind-engage/mindengage-qbank/internal/formats/xlsx"
)
