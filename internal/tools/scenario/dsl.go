package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is an ordered list of steps built by a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scripted action or expectation.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs a Lua script and returns the Scenario it builds.
// The script must end with `return scene`.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: scenarioNew}}, 0)
	state.SetGlobal("Scenario")
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "dictionary", Function: scenarioDictionary},
	{Name: "rules", Function: scenarioRules},
	{Name: "add_player", Function: scenarioAddPlayer},
	{Name: "start", Function: scenarioStart},
	{Name: "answer", Function: scenarioAnswer},
	{Name: "rename", Function: scenarioRename},
	{Name: "abort", Function: scenarioAbort},
	{Name: "save", Function: scenarioSave},
	{Name: "load", Function: scenarioLoad},
	{Name: "expect_active", Function: scenarioExpectActive},
	{Name: "expect_letter", Function: scenarioExpectLetter},
	{Name: "expect_status", Function: scenarioExpectStatus},
	{Name: "expect_penalties", Function: scenarioExpectPenalties},
	{Name: "expect_eliminated", Function: scenarioExpectEliminated},
	{Name: "expect_winner", Function: scenarioExpectWinner},
	{Name: "expect_roster", Function: scenarioExpectRoster},
}

func scenarioDictionary(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	words := stringList(state, 2, "dictionary word")
	if len(words) == 0 {
		lua.Errorf(state, "dictionary needs at least one word")
	}
	appendStep(scenario, "dictionary", map[string]any{"words": words})
	state.PushValue(1)
	return 1
}

func scenarioRules(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "rules", tableToMap(state, 2))
	state.PushValue(1)
	return 1
}

func scenarioAddPlayer(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	data := optionalTable(state, 3)
	data["name"] = name
	appendStep(scenario, "add_player", data)
	state.PushValue(1)
	return 1
}

func scenarioStart(state *lua.State) int {
	scenario := checkScenario(state)
	var names []string
	if !state.IsNoneOrNil(2) {
		lua.CheckType(state, 2, lua.TypeTable)
		names = stringList(state, 2, "player name")
	}
	data := optionalTable(state, 3)
	data["names"] = names
	appendStep(scenario, "start", data)
	state.PushValue(1)
	return 1
}

func scenarioAnswer(state *lua.State) int {
	scenario := checkScenario(state)
	word := lua.CheckString(state, 2)
	data := optionalTable(state, 3)
	data["word"] = word
	appendStep(scenario, "answer", data)
	state.PushValue(1)
	return 1
}

func scenarioRename(state *lua.State) int {
	scenario := checkScenario(state)
	from := lua.CheckString(state, 2)
	to := lua.CheckString(state, 3)
	data := optionalTable(state, 4)
	data["from"] = from
	data["to"] = to
	appendStep(scenario, "rename", data)
	state.PushValue(1)
	return 1
}

func scenarioAbort(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "abort", nil)
	state.PushValue(1)
	return 1
}

func scenarioSave(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "save", nil)
	state.PushValue(1)
	return 1
}

func scenarioLoad(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "load", optionalTable(state, 2))
	state.PushValue(1)
	return 1
}

func scenarioExpectActive(state *lua.State) int {
	return appendNamed(state, "expect_active", "name")
}

func scenarioExpectLetter(state *lua.State) int {
	return appendNamed(state, "expect_letter", "letter")
}

func scenarioExpectStatus(state *lua.State) int {
	return appendNamed(state, "expect_status", "status")
}

func scenarioExpectEliminated(state *lua.State) int {
	return appendNamed(state, "expect_eliminated", "name")
}

func scenarioExpectPenalties(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	letters := lua.OptString(state, 3, "")
	appendStep(scenario, "expect_penalties", map[string]any{"name": name, "letters": letters})
	state.PushValue(1)
	return 1
}

// expect_winner(nil) asserts that the match ended with nobody standing.
func scenarioExpectWinner(state *lua.State) int {
	scenario := checkScenario(state)
	data := map[string]any{"name": ""}
	if !state.IsNoneOrNil(2) {
		data["name"] = lua.CheckString(state, 2)
	}
	appendStep(scenario, "expect_winner", data)
	state.PushValue(1)
	return 1
}

func scenarioExpectRoster(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	names := stringList(state, 2, "player name")
	appendStep(scenario, "expect_roster", map[string]any{"names": names})
	state.PushValue(1)
	return 1
}

func appendNamed(state *lua.State, kind, key string) int {
	scenario := checkScenario(state)
	value := lua.CheckString(state, 2)
	if strings.TrimSpace(value) == "" {
		lua.Errorf(state, "%s %s is required", kind, key)
	}
	appendStep(scenario, kind, map[string]any{key: value})
	state.PushValue(1)
	return 1
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if scenario == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

// stringList reads the array part of the table at index. Every element must
// be a string.
func stringList(state *lua.State, index int, what string) []string {
	index = state.AbsIndex(index)
	out := []string{}
	for i := 1; ; i++ {
		state.RawGetInt(index, i)
		if state.IsNil(-1) {
			state.Pop(1)
			return out
		}
		if state.TypeOf(-1) != lua.TypeString {
			state.Pop(1)
			lua.Errorf(state, "%s %d must be a string", what, i)
		}
		value, _ := state.ToString(-1)
		state.Pop(1)
		out = append(out, value)
	}
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		if math.Mod(value, 1) == 0 {
			return int(value)
		}
		return value
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToMap(state, index)
	default:
		return nil
	}
}
