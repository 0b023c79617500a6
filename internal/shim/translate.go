package shim

import "github.com/khulnasoft/titan/internal/repo"

// TranslateArgs builds the argument list for a delegated titan of the
// given version. --single-package goes after the remaining arguments so
// it is parsed as a subcommand flag rather than a global one.
func TranslateArgs(args *Args, mode repo.Mode, version string) []string {
	hasShim := VersionHasShim(version)

	out := make([]string, 0, len(args.RemainingArgs)+len(args.ForwardedArgs)+3)
	if hasShim {
		out = append(out, "--skip-infer")
	}
	out = append(out, args.RemainingArgs...)
	if hasShim && mode == repo.SinglePackage && !args.HasFlag("--single-package") {
		out = append(out, "--single-package")
	}
	out = append(out, "--")
	out = append(out, args.ForwardedArgs...)
	return out
}
