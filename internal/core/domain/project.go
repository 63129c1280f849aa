package domain

// Project is the loaded configuration: the command tasks that make up the host
// graph and the artifacts that are gated into it.
type Project struct {
	// Root is the directory all relative paths were resolved against.
	Root string

	// Digest selects the fingerprint algorithm for every artifact.
	Digest DigestAlgorithm

	// Tasks are sorted by name.
	Tasks []Task

	// Artifacts are sorted by name.
	Artifacts []Artifact
}

// Artifact returns the artifact declared under name.
func (p *Project) Artifact(name string) (Artifact, bool) {
	for _, a := range p.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}
