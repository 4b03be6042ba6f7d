package updater

// printSummary prints the closing status and suggested next actions.
func (u *runner) printSummary(report *Report) {
	u.out.Header("Update complete")

	if report.Catalog != nil && report.Catalog.HasCount() {
		u.out.Plain("Models in catalog: %d", report.Catalog.Entries)
	}

	if report.Backup != nil {
		u.out.Plain("Backup kept at:    %s", u.relative(report.Backup.Path))
	}

	u.out.Plain("")
	u.out.Plain("Next steps:")
	u.out.Hint("Review the changes:  git diff -- %s", u.cfg.DataFile)

	if report.Backup != nil {
		u.out.Hint("Remove the backup:   rm %s", u.relative(report.Backup.Path))
	}

	switch {
	case report.Build == nil || report.Build.Skipped:
		u.out.Hint("Build the binary:    %s", u.cfg.Build.CommandLine())
	case report.Build.ArtifactFound:
		u.out.Hint("Try the new binary:  ./%s", u.relative(report.Build.Artifact))
	}

	u.out.Hint("Commit the catalog:  git add %s", u.cfg.DataFile)
}
