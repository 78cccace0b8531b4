/*
Package system implements the system allocator program.

The system allocator owns every account that no other program claimed. It
creates accounts on behalf of other programs (CreateAccount), hands owned
accounts over to another program (Assign) and moves lamports between
accounts it owns (Transfer).

It also keeps the rent configuration: the balance an account must hold
for its storage to be exempt from reclamation.
*/
package system
