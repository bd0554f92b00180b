// Package kernel boots an application from a conventional directory layout
// and layered configuration.
//
// Given an environment name ("app", "console", "web") and an application
// root, the kernel:
//
//  1. resolves the directory layout (config, storage, log, cache, src);
//  2. seeds a di.Container with kernel parameters (app.name, app.path, ...)
//     and the process environment;
//  3. loads config/{env}.yml and then config/{env}.{sub}.yml, where the
//     sub-environment defaults to "local" and may be switched by an
//     app.sub_environment parameter in the base layer;
//  4. compiles the container and, outside debug mode, writes it to
//     {cache}/container_{md5(env+appPath)}.cache so later starts skip
//     steps 2 and 3;
//  5. forwards Run/Invoke to the service registered as "app".
//
// Booting is lazy: New performs no I/O and the first call to Container,
// Run or Invoke triggers it. A cached artifact is trusted as long as it
// exists; delete it (or use WithCacheValidation) after changing
// configuration.
//
// A Kernel is meant to be used from a single goroutine.
package kernel
