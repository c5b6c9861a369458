package model

// CompilationDBFile is the fixed name of the compilation database at a
// project root.
const CompilationDBFile = "compile_commands.json"

// CompileCommand is one record of a JSON compilation database.
// Interceptors emit either Command or Arguments; both are preserved.
type CompileCommand struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	Output    string   `json:"output,omitempty"`
}

// CompilationDB is an ordered list of compile commands.
type CompilationDB []CompileCommand

// Clone returns a deep copy of db.
func (db CompilationDB) Clone() CompilationDB {
	if db == nil {
		return nil
	}

	out := make(CompilationDB, len(db))
	for i, cmd := range db {
		out[i] = cmd
		if cmd.Arguments != nil {
			out[i].Arguments = append([]string(nil), cmd.Arguments...)
		}
	}

	return out
}
