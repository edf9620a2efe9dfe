package app

import (
	"github.com/specialistvlad/stepflow/internal/workflow"
	"github.com/specialistvlad/stepflow/modules/finalentities"
)

// coreModules is the definitive list of all workflow modules that are
// compiled into the stepflow binary.
var coreModules = []workflow.Module{
	&finalentities.Module{},
}
